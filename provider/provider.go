package lambdasync

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/validation"

	"github.com/raywall/terraform-provider-lambdasync/internal/client"
	"github.com/raywall/terraform-provider-lambdasync/internal/repository"
	"github.com/raywall/terraform-provider-lambdasync/internal/service"
	"github.com/raywall/terraform-provider-lambdasync/provider/internal/models"
	"github.com/raywall/terraform-provider-lambdasync/provider/internal/resource"
)

// Provider retorna o schema e resources map.
func Provider() *schema.Provider {
	return &schema.Provider{
		Schema: map[string]*schema.Schema{
			"region": {
				Type:        schema.TypeString,
				Optional:    true,
				DefaultFunc: schema.EnvDefaultFunc("AWS_REGION", "us-east-1"),
				Description: "AWS region to use for resources",
			},
			"preflight": {
				Type:        schema.TypeBool,
				Optional:    true,
				Default:     false,
				Description: "Se true, verifica conta, Role e objeto S3 de código antes de cada operação.",
			},
			"wait_timeout": {
				Type:         schema.TypeInt,
				Optional:     true,
				Default:      60,
				ValidateFunc: validation.IntAtLeast(0),
				Description:  "Segundos de espera pelo estado Active/Successful da função após create e update. 0 desativa a espera.",
			},
		},
		ResourcesMap: map[string]*schema.Resource{
			"lambdasync_function": resource.ResourceLambdaFunction(),
		},
		ConfigureContextFunc: providerConfigure,
	}
}

func providerConfigure(ctx context.Context, d *schema.ResourceData) (interface{}, diag.Diagnostics) {
	region := d.Get("region").(string)
	waitTimeout := time.Duration(d.Get("wait_timeout").(int)) * time.Second

	// 1. Inicializa o AWS Client (Base)
	awsClient, err := client.New(ctx, region)
	if err != nil {
		return nil, diag.FromErr(fmt.Errorf("failed to create aws client: %w", err))
	}

	// 2. Inicializa os Repositórios (Camada de Acesso a Dados)
	bundle := &models.ConfigurationBundle{
		Client:    awsClient,
		Functions: repository.NewLambdaRepository(awsClient, waitTimeout),
	}

	// 3. Preflight opcional (Camada de Lógica de Negócio)
	if d.Get("preflight").(bool) {
		bundle.Preflight = &service.PreflightService{
			STS:     awsClient.STS,
			IAM:     &service.IAMService{IAMRepo: repository.NewIAMRepository(awsClient)},
			Objects: repository.NewS3Repository(awsClient),
		}
	}

	tflog.Debug(ctx, "lambdasync provider configured", map[string]interface{}{
		"region":       awsClient.Region,
		"preflight":    bundle.Preflight != nil,
		"wait_timeout": waitTimeout.String(),
	})

	// 4. Retorna o Bundle para os Resources
	return bundle, nil
}
