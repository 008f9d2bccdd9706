package reconcile

import (
	"context"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/fingerprint"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

// fakeClient simula a Lambda em memória e registra cada chamada recebida.
type fakeClient struct {
	fn    *types.FunctionConfiguration
	calls []string

	getErr    error
	createErr error
	configErr error
	codeErr   error
	deleteErr error
}

func (f *fakeClient) GetFunction(_ context.Context, name string) (types.RemoteSnapshot, error) {
	f.calls = append(f.calls, "get")
	if f.getErr != nil {
		return types.RemoteSnapshot{}, f.getErr
	}
	if f.fn == nil {
		return types.RemoteSnapshot{}, faults.NewTypedError(faults.NotFoundError, "function "+name+" not found", nil)
	}
	return types.RemoteSnapshot{Exists: true, Configuration: *f.fn}, nil
}

func (f *fakeClient) CreateFunction(_ context.Context, d types.FunctionDescriptor) error {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return f.createErr
	}
	f.fn = &types.FunctionConfiguration{
		Role:        d.Role,
		Handler:     d.Handler,
		Description: d.Description,
		Timeout:     d.Timeout,
		MemorySize:  d.MemorySize,
		Runtime:     d.Runtime,
		CodeSha256:  codeDigest(d.Code),
	}
	return nil
}

func (f *fakeClient) UpdateFunctionConfiguration(_ context.Context, _ string, p types.ConfigPatch) error {
	f.calls = append(f.calls, "update_configuration")
	if f.configErr != nil {
		return f.configErr
	}
	if p.Role != nil {
		f.fn.Role = *p.Role
	}
	if p.Handler != nil {
		f.fn.Handler = *p.Handler
	}
	if p.Description != nil {
		f.fn.Description = *p.Description
	}
	if p.Timeout != nil {
		f.fn.Timeout = *p.Timeout
	}
	if p.MemorySize != nil {
		f.fn.MemorySize = *p.MemorySize
	}
	return nil
}

func (f *fakeClient) UpdateFunctionCode(_ context.Context, _ string, c types.CodeDecision) error {
	f.calls = append(f.calls, "update_code")
	if f.codeErr != nil {
		return f.codeErr
	}
	f.fn.CodeSha256 = codeDigest(c)
	return nil
}

func (f *fakeClient) DeleteFunction(_ context.Context, _ string) error {
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.fn = nil
	return nil
}

// mutatingCalls ignora as leituras.
func (f *fakeClient) mutatingCalls() []string {
	var out []string
	for _, c := range f.calls {
		if c != "get" {
			out = append(out, c)
		}
	}
	return out
}

func codeDigest(c types.CodeDecision) string {
	if c.Kind == types.CodeUploadInline {
		return fingerprint.Digest(c.ZipFile)
	}
	// Objetos S3: a Lambda calcula o digest do objeto; o teste usa um marcador.
	return "s3:" + c.Bucket + "/" + c.Key + "@" + c.Version
}
