package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/fingerprint"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

type memoryFunctions struct {
	functions map[string]types.FunctionConfiguration
	mutations int
}

func (f *memoryFunctions) GetFunction(_ context.Context, name string) (types.RemoteSnapshot, error) {
	c, ok := f.functions[name]
	if !ok {
		return types.RemoteSnapshot{}, faults.NewTypedError(faults.NotFoundError, "GetFunction failed", nil)
	}
	return types.RemoteSnapshot{Exists: true, Configuration: c}, nil
}

func (f *memoryFunctions) CreateFunction(_ context.Context, fn types.FunctionDescriptor) error {
	f.mutations++
	f.functions[fn.Name] = types.FunctionConfiguration{
		Role: fn.Role, Handler: fn.Handler, Runtime: fn.Runtime, Description: fn.Description,
		Timeout: fn.Timeout, MemorySize: fn.MemorySize, CodeSha256: fingerprint.Digest(fn.Code.ZipFile),
	}
	return nil
}

func (f *memoryFunctions) UpdateFunctionConfiguration(_ context.Context, _ string, _ types.ConfigPatch) error {
	f.mutations++
	return nil
}

func (f *memoryFunctions) UpdateFunctionCode(_ context.Context, _ string, _ types.CodeDecision) error {
	f.mutations++
	return nil
}

func (f *memoryFunctions) DeleteFunction(_ context.Context, name string) error {
	f.mutations++
	delete(f.functions, name)
	return nil
}

type harness struct {
	functions *memoryFunctions
	opts      BackendOptions
	stdout    bytes.Buffer
}

func newHarness() *harness {
	return &harness{functions: &memoryFunctions{functions: map[string]types.FunctionConfiguration{}}}
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	h.stdout.Reset()
	cmd := newRootCommand(func(_ context.Context, opts BackendOptions) (Backend, error) {
		h.opts = opts
		return Backend{Functions: h.functions}, nil
	})
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&bytes.Buffer{})
	return execute(context.Background(), cmd, args)
}

func (h *harness) decode(t *testing.T, v any) {
	t.Helper()
	assert.NilError(t, json.Unmarshal(h.stdout.Bytes(), v))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApplyCreateThenConverged(t *testing.T) {
	h := newHarness()
	pkg := writeFile(t, "orders.zip", "package")
	args := []string{"apply", "--name", "orders", "--runtime", "python3.12",
		"--role-arn", "arn:aws:iam::123456789012:role/exec", "--handler", "app.handler", "--path", pkg}

	assert.Equal(t, h.run(t, args...), ExitOK)
	var out applyOutput
	h.decode(t, &out)
	assert.DeepEqual(t, out, applyOutput{Changed: true, Action: "create", Function: "orders", Code: "upload_inline"})

	assert.Equal(t, h.run(t, args...), ExitOK)
	h.decode(t, &out)
	assert.Check(t, !out.Changed)
	assert.Check(t, is.Equal(out.Action, "update"))
	assert.Check(t, is.Equal(h.functions.mutations, 1))
}

func TestApplyCheckDoesNotMutate(t *testing.T) {
	h := newHarness()
	pkg := writeFile(t, "orders.zip", "package")

	code := h.run(t, "apply", "--check", "--name", "orders", "--runtime", "python3.12",
		"--role-arn", "arn:aws:iam::123456789012:role/exec", "--handler", "app.handler", "--path", pkg)
	assert.Equal(t, code, ExitOK)

	var out applyOutput
	h.decode(t, &out)
	assert.Check(t, out.Changed)
	assert.Check(t, out.DryRun)
	assert.Check(t, is.Equal(h.functions.mutations, 0))
}

func TestApplyFromFileWithFlagOverride(t *testing.T) {
	h := newHarness()
	pkg := writeFile(t, "orders.zip", "package")

	files := map[string]string{
		"orders.yaml": "name: orders\nruntime: python3.12\nrole_arn: arn:aws:iam::123456789012:role/exec\nhandler: app.handler\npath: " + pkg + "\nmemory_size: 256\n",
		"orders.toml": "name = \"orders\"\nruntime = \"python3.12\"\nrole_arn = \"arn:aws:iam::123456789012:role/exec\"\nhandler = \"app.handler\"\npath = \"" + pkg + "\"\nmemory_size = 256\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			h.functions.functions = map[string]types.FunctionConfiguration{}
			file := writeFile(t, name, content)

			assert.Equal(t, h.run(t, "apply", "--file", file, "--timeout", "30", "--region", "sa-east-1"), ExitOK)
			got := h.functions.functions["orders"]
			assert.Check(t, is.Equal(got.MemorySize, int32(256)))
			assert.Check(t, is.Equal(got.Timeout, int32(30)))
			assert.Check(t, is.Equal(h.opts.Region, "sa-east-1"))
		})
	}
}

func TestApplyFailures(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantKind string
	}{
		{
			name:     "missing name",
			args:     []string{"apply", "--runtime", "python3.12"},
			wantCode: ExitValidation,
			wantKind: "ValidationError",
		},
		{
			name:     "path and s3 flags",
			args:     []string{"apply", "--name", "f", "--runtime", "python3.12", "--path", "a.zip", "--s3-bucket", "b"},
			wantCode: ExitValidation,
			wantKind: "ValidationError",
		},
		{
			name:     "unknown flag",
			args:     []string{"apply", "--bogus"},
			wantCode: ExitValidation,
			wantKind: "ValidationError",
		},
		{
			name:     "missing package",
			args:     []string{"apply", "--name", "f", "--runtime", "python3.12", "--role-arn", "arn:x", "--handler", "h", "--path", "/nonexistent/f.zip"},
			wantCode: ExitIO,
			wantKind: "IOError",
		},
		{
			name:     "missing input file",
			args:     []string{"apply", "--file", "/nonexistent/f.yaml"},
			wantCode: ExitIO,
			wantKind: "IOError",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			assert.Equal(t, h.run(t, tc.args...), tc.wantCode)

			var out failureOutput
			h.decode(t, &out)
			assert.Check(t, out.Failed)
			assert.Check(t, is.Equal(out.Kind, tc.wantKind))
			assert.Check(t, out.Msg != "")
		})
	}
}

func TestLoadInputFileRejectsUnknownKeys(t *testing.T) {
	for name, content := range map[string]string{
		"f.yaml": "name: f\nmemory: 128\n",
		"f.toml": "name = \"f\"\nmemory = 128\n",
	} {
		_, err := loadInputFile(writeFile(t, name, content))
		assert.Check(t, faults.IsCategory(err, faults.ValidationError), name)
	}

	_, err := loadInputFile(writeFile(t, "f.json", "{}"))
	assert.Check(t, faults.IsCategory(err, faults.ValidationError))
}

func TestLoadTOMLDefaultsWhenUnset(t *testing.T) {
	in, err := loadInputFile(writeFile(t, "f.toml", "name = \"f\"\ntimeout = 10\n"))
	assert.NilError(t, err)
	assert.Check(t, is.Equal(*in.Timeout, int32(10)))
	assert.Check(t, in.MemorySize == nil)
}

func TestExitCodeForError(t *testing.T) {
	assert.Check(t, is.Equal(ExitCodeForError(faults.Validation("x")), ExitValidation))
	assert.Check(t, is.Equal(ExitCodeForError(faults.NewTypedError(faults.IOError, "x", nil)), ExitIO))
	assert.Check(t, is.Equal(ExitCodeForError(faults.NewTypedError(faults.ClientError, "x", nil)), ExitClient))
	assert.Check(t, is.Equal(ExitCodeForError(errors.New("boom")), ExitError))
}
