package reconcile

import (
	"fmt"
	"os"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/fingerprint"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

// Plan é a saída do Differ.
type Plan struct {
	Action types.Action
	Patch  types.ConfigPatch
	Code   types.CodeDecision
	// Descriptor só é preenchido quando Action == ActionCreate.
	Descriptor types.FunctionDescriptor
}

// Changed indica se aplicar o plano altera algo remotamente.
func (p Plan) Changed() bool {
	switch p.Action {
	case types.ActionCreate, types.ActionDelete:
		return true
	case types.ActionUpdate:
		return !p.Patch.Empty() || p.Code.Kind != types.CodeNoChange
	default:
		return false
	}
}

// Differ compara o estado desejado com o snapshot remoto.
type Differ struct {
	// ReadFile lê o pacote local; nil usa os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

// Diff decide a ação e calcula o patch de configuração e a decisão de código.
func (d *Differ) Diff(desired types.DesiredState, remote types.RemoteSnapshot) (Plan, error) {
	present := desired.State() == types.StatePresent

	switch {
	case present && !remote.Exists:
		return d.planCreate(desired)
	case present:
		return d.planUpdate(desired, remote)
	case remote.Exists:
		return Plan{Action: types.ActionDelete}, nil
	default:
		return Plan{Action: types.ActionNoOp}, nil
	}
}

func (d *Differ) planCreate(desired types.DesiredState) (Plan, error) {
	if desired.Runtime() == "" {
		return Plan{}, faults.Validation("runtime parameter is required when creating a Lambda function")
	}
	if desired.RoleARN() == "" {
		return Plan{}, faults.Validation("role_arn parameter is required when creating a Lambda function")
	}
	if desired.Handler() == "" {
		return Plan{}, faults.Validation("handler parameter is required when creating a Lambda function")
	}

	var code types.CodeDecision
	switch src := desired.CodeSource().(type) {
	case types.RemoteRef:
		code = referenceObject(src)
	case types.LocalPath:
		bs, err := d.read(src.Path)
		if err != nil {
			return Plan{}, err
		}
		code = types.CodeDecision{Kind: types.CodeUploadInline, ZipFile: bs}
	default:
		return Plan{}, faults.Validation("either a remote code reference or a local path is required")
	}

	return Plan{
		Action: types.ActionCreate,
		Code:   code,
		Descriptor: types.FunctionDescriptor{
			Name:        desired.Name(),
			Role:        desired.RoleARN(),
			Handler:     desired.Handler(),
			Runtime:     desired.Runtime(),
			Description: desired.Description(),
			Timeout:     desired.Timeout(),
			MemorySize:  desired.MemorySize(),
			Code:        code,
		},
	}, nil
}

func (d *Differ) planUpdate(desired types.DesiredState, remote types.RemoteSnapshot) (Plan, error) {
	current := remote.Configuration

	if desired.Runtime() == "" {
		return Plan{}, faults.Validation("runtime parameter is required")
	}
	if desired.Runtime() != current.Runtime {
		return Plan{}, faults.Validation(fmt.Sprintf(
			"runtime is immutable post-creation: function %q has runtime %q, desired %q; recreate the function",
			desired.Name(), current.Runtime, desired.Runtime()))
	}

	code, err := d.codeForUpdate(desired.CodeSource(), current.CodeSha256)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Action: types.ActionUpdate,
		Patch:  ComputePatch(desired, current),
		Code:   code,
	}, nil
}

// ComputePatch inclui um campo se, e somente se, o valor desejado difere do remoto.
// Role e handler vazios não são gerenciados numa atualização: o valor remoto é mantido.
func ComputePatch(desired types.DesiredState, current types.FunctionConfiguration) types.ConfigPatch {
	var patch types.ConfigPatch
	if v := desired.RoleARN(); v != "" && v != current.Role {
		patch.Role = &v
	}
	if v := desired.Handler(); v != "" && v != current.Handler {
		patch.Handler = &v
	}
	if v := desired.Description(); v != current.Description {
		patch.Description = &v
	}
	if v := desired.Timeout(); v != current.Timeout {
		patch.Timeout = &v
	}
	if v := desired.MemorySize(); v != current.MemorySize {
		patch.MemorySize = &v
	}
	return patch
}

func (d *Differ) codeForUpdate(src types.CodeSource, remoteDigest string) (types.CodeDecision, error) {
	switch src := src.(type) {
	case types.RemoteRef:
		// A referência S3 é resolvida pela AWS no deploy; é sempre reaplicada.
		return referenceObject(src), nil
	case types.LocalPath:
		bs, err := d.read(src.Path)
		if err != nil {
			return types.CodeDecision{}, err
		}
		if fingerprint.Digest(bs) == remoteDigest {
			return types.CodeDecision{Kind: types.CodeNoChange}, nil
		}
		return types.CodeDecision{Kind: types.CodeUploadInline, ZipFile: bs}, nil
	default:
		return types.CodeDecision{Kind: types.CodeNoChange}, nil
	}
}

func (d *Differ) read(path string) ([]byte, error) {
	readFile := d.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	bs, err := readFile(path)
	if err != nil {
		return nil, faults.NewTypedError(faults.IOError, fmt.Sprintf("reading code package %s", path), err)
	}
	return bs, nil
}

func referenceObject(ref types.RemoteRef) types.CodeDecision {
	return types.CodeDecision{
		Kind:    types.CodeReferenceObject,
		Bucket:  ref.Bucket,
		Key:     ref.Key,
		Version: ref.Version,
	}
}
