package resource

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/validation"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/fingerprint"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
	"github.com/raywall/terraform-provider-lambdasync/provider/internal/models"
)

var s3Attributes = []string{"s3_bucket", "s3_key", "s3_object_version"}

// ResourceLambdaFunction define o schema do recurso.
func ResourceLambdaFunction() *schema.Resource {
	return &schema.Resource{
		CreateContext: resourceCreate,
		ReadContext:   resourceRead,
		UpdateContext: resourceUpdate,
		DeleteContext: resourceDelete,
		CustomizeDiff: customizeDiff,
		Importer: &schema.ResourceImporter{
			StateContext: schema.ImportStatePassthroughContext,
		},
		Schema: map[string]*schema.Schema{
			"function_name": {Type: schema.TypeString, Required: true, ForceNew: true},
			"runtime": {
				Type:     schema.TypeString,
				Required: true,
				DiffSuppressFunc: func(_, old, new string, _ *schema.ResourceData) bool {
					return types.NormalizeRuntime(old) == types.NormalizeRuntime(new)
				},
			},
			"role":    {Type: schema.TypeString, Required: true},
			"handler": {Type: schema.TypeString, Required: true},
			"filename": {
				Type:          schema.TypeString,
				Optional:      true,
				ConflictsWith: s3Attributes,
				Description:   "Caminho local do pacote .zip enviado inline.",
			},
			"s3_bucket": {
				Type:          schema.TypeString,
				Optional:      true,
				ConflictsWith: []string{"filename"},
				RequiredWith:  []string{"s3_key"},
			},
			"s3_key": {
				Type:          schema.TypeString,
				Optional:      true,
				ConflictsWith: []string{"filename"},
				RequiredWith:  []string{"s3_bucket"},
			},
			"s3_object_version": {
				Type:          schema.TypeString,
				Optional:      true,
				ConflictsWith: []string{"filename"},
				RequiredWith:  []string{"s3_bucket", "s3_key"},
			},
			"description": {Type: schema.TypeString, Optional: true},
			"timeout": {
				Type:         schema.TypeInt,
				Optional:     true,
				Default:      int(types.DefaultTimeout),
				ValidateFunc: validation.IntAtLeast(1),
			},
			"memory_size": {
				Type:         schema.TypeInt,
				Optional:     true,
				Default:      int(types.DefaultMemorySize),
				ValidateFunc: validation.IntAtLeast(1),
			},
			"source_code_hash": {
				Type:        schema.TypeString,
				Optional:    true,
				Computed:    true,
				Description: "Base64 do SHA-256 do pacote, no mesmo formato do CodeSha256 da Lambda.",
			},
			"arn":     {Type: schema.TypeString, Computed: true},
			"version": {Type: schema.TypeString, Computed: true},
		},
	}
}

// resourceCreate (Controller) - Mapeia e chama o reconciliador
func resourceCreate(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	if diags := reconcileFunction(ctx, d, m, "create", types.StatePresent); diags.HasError() {
		return diags
	}
	d.SetId(d.Get("function_name").(string))
	return resourceRead(ctx, d, m)
}

// resourceRead (Controller)
func resourceRead(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	bundle, ok := m.(*models.ConfigurationBundle)
	if !ok || bundle.Functions == nil {
		return diag.FromErr(fmt.Errorf("lambda repository not configured"))
	}

	snap, err := bundle.Functions.GetFunction(ctx, d.Id())
	if err != nil {
		if faults.IsCategory(err, faults.NotFoundError) {
			tflog.Warn(ctx, "function not found, removing from state", map[string]interface{}{"function": d.Id()})
			d.SetId("")
			return nil
		}
		return diagFromError("read", err)
	}

	c := snap.Configuration
	values := map[string]interface{}{
		"function_name":    d.Id(),
		"runtime":          c.Runtime,
		"role":             c.Role,
		"handler":          c.Handler,
		"description":      c.Description,
		"timeout":          int(c.Timeout),
		"memory_size":      int(c.MemorySize),
		"source_code_hash": c.CodeSha256,
		"arn":              c.FunctionARN,
		"version":          c.Version,
	}
	for k, v := range values {
		if err := d.Set(k, v); err != nil {
			return diag.FromErr(fmt.Errorf("setting %s: %w", k, err))
		}
	}
	return nil
}

// resourceUpdate (Controller)
func resourceUpdate(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	if diags := reconcileFunction(ctx, d, m, "update", types.StatePresent); diags.HasError() {
		return diags
	}
	return resourceRead(ctx, d, m)
}

// resourceDelete (Controller) - Reconcilia com state = absent
func resourceDelete(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	if diags := reconcileFunction(ctx, d, m, "delete", types.StateAbsent); diags.HasError() {
		return diags
	}
	d.SetId("")
	return nil
}

// customizeDiff expõe no plano a mudança do pacote local, que o Terraform não
// enxerga porque o atributo filename continua igual.
func customizeDiff(ctx context.Context, d *schema.ResourceDiff, _ interface{}) error {
	if !d.NewValueKnown("filename") {
		return nil
	}
	filename := d.Get("filename").(string)
	if filename == "" {
		return nil
	}

	_, digest, err := fingerprint.File(filename)
	if err != nil {
		return err
	}
	if d.Get("source_code_hash").(string) == digest {
		return nil
	}

	tflog.Debug(ctx, "local package changed", map[string]interface{}{
		"filename": filename,
		"digest":   digest,
	})
	return d.SetNew("source_code_hash", digest)
}

func reconcileFunction(ctx context.Context, d *schema.ResourceData, m interface{}, operation string, state types.State) diag.Diagnostics {
	// 1. Acesso ao ConfigurationBundle
	bundle, ok := m.(*models.ConfigurationBundle)
	if !ok || bundle.Functions == nil {
		return diag.FromErr(fmt.Errorf("lambda repository not configured"))
	}

	// 2. Mapeamento de Entrada (Schema -> DesiredState)
	desired, err := types.NewDesiredState(expandFunctionInput(d, state))
	if err != nil {
		return diagFromError("validate", err)
	}

	// 3. Executa a Lógica (Chama o Reconciler)
	result, err := bundle.Reconciler().Reconcile(ctx, desired)
	if err != nil {
		return diagFromError(operation, err)
	}

	tflog.Info(ctx, "function reconciled", map[string]interface{}{
		"function":      desired.Name(),
		"action":        result.Action.String(),
		"changed":       result.Changed,
		"config_fields": result.ConfigFields,
		"code":          result.Code.String(),
	})
	return nil
}

// expandFunctionInput extrai os dados do schema para o DTO de entrada.
func expandFunctionInput(d *schema.ResourceData, state types.State) types.FunctionInput {
	timeout := int32(d.Get("timeout").(int))
	memorySize := int32(d.Get("memory_size").(int))

	return types.FunctionInput{
		Name:            d.Get("function_name").(string),
		State:           string(state),
		Runtime:         d.Get("runtime").(string),
		RoleARN:         d.Get("role").(string),
		Handler:         d.Get("handler").(string),
		Path:            d.Get("filename").(string),
		S3Bucket:        d.Get("s3_bucket").(string),
		S3Key:           d.Get("s3_key").(string),
		S3ObjectVersion: d.Get("s3_object_version").(string),
		Description:     d.Get("description").(string),
		Timeout:         &timeout,
		MemorySize:      &memorySize,
	}
}

func diagFromError(operation string, err error) diag.Diagnostics {
	summary := fmt.Sprintf("lambdasync %s failed", operation)
	if category := faults.CategoryOf(err); category != "" {
		summary = fmt.Sprintf("%s (%s)", summary, category)
	}
	return diag.Diagnostics{{
		Severity: diag.Error,
		Summary:  summary,
		Detail:   err.Error(),
	}}
}
