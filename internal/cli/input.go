package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"go.yaml.in/yaml/v3"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

// loadInputFile lê a declaração da função de um arquivo YAML ou TOML,
// rejeitando chaves desconhecidas.
func loadInputFile(path string) (types.FunctionInput, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".toml":
		return loadTOML(path)
	default:
		return types.FunctionInput{}, faults.Validation(fmt.Sprintf("unsupported input file %q: use .yaml, .yml or .toml", path))
	}
}

func loadYAML(path string) (types.FunctionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.FunctionInput{}, faults.NewTypedError(faults.IOError, "failed to read input file", err)
	}

	var in types.FunctionInput
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return types.FunctionInput{}, nil
		}
		return types.FunctionInput{}, faults.NewTypedError(faults.ValidationError, "invalid yaml input", err)
	}

	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return types.FunctionInput{}, faults.NewTypedError(faults.ValidationError, "invalid yaml input", errors.New("multiple YAML documents are not supported"))
		}
		return types.FunctionInput{}, faults.NewTypedError(faults.ValidationError, "invalid yaml input", err)
	}
	return in, nil
}

func loadTOML(path string) (types.FunctionInput, error) {
	// Os inteiros são decodificados sem ponteiro e só copiados quando a chave
	// existe no arquivo; ausentes recebem o padrão em NewDesiredState.
	var raw struct {
		types.FunctionInput
		Timeout    int32 `toml:"timeout"`
		MemorySize int32 `toml:"memory_size"`
	}
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return types.FunctionInput{}, faults.NewTypedError(faults.IOError, "failed to read input file", err)
		}
		return types.FunctionInput{}, faults.NewTypedError(faults.ValidationError, "invalid toml input", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return types.FunctionInput{}, faults.Validation(fmt.Sprintf("invalid toml input: unknown keys %s", strings.Join(keys, ", ")))
	}

	in := raw.FunctionInput
	if meta.IsDefined("timeout") {
		in.Timeout = &raw.Timeout
	}
	if meta.IsDefined("memory_size") {
		in.MemorySize = &raw.MemorySize
	}
	return in, nil
}

// flagInput guarda os valores das flags de entrada da função.
type flagInput struct {
	types.FunctionInput
	timeout    int32
	memorySize int32
}

func (f *flagInput) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.Name, "name", "", "function name")
	flags.StringVar(&f.State, "state", "", "desired state: present or absent (default present)")
	flags.StringVar(&f.Runtime, "runtime", "", "function runtime, e.g. python3.12")
	flags.StringVar(&f.RoleARN, "role-arn", "", "execution role ARN")
	flags.StringVar(&f.Handler, "handler", "", "function handler")
	flags.StringVar(&f.Path, "path", "", "local .zip package uploaded inline")
	flags.StringVar(&f.S3Bucket, "s3-bucket", "", "bucket holding the code package")
	flags.StringVar(&f.S3Key, "s3-key", "", "key of the code package")
	flags.StringVar(&f.S3ObjectVersion, "s3-object-version", "", "version of the code package object")
	flags.StringVar(&f.Description, "description", "", "function description")
	flags.Int32Var(&f.timeout, "timeout", types.DefaultTimeout, "timeout in seconds")
	flags.Int32Var(&f.memorySize, "memory-size", types.DefaultMemorySize, "memory size in MB")
}

// overlay aplica sobre base apenas as flags informadas explicitamente.
func (f *flagInput) overlay(flags *pflag.FlagSet, base types.FunctionInput) types.FunctionInput {
	out := base
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("name", &out.Name, f.Name)
	set("state", &out.State, f.State)
	set("runtime", &out.Runtime, f.Runtime)
	set("role-arn", &out.RoleARN, f.RoleARN)
	set("handler", &out.Handler, f.Handler)
	set("path", &out.Path, f.Path)
	set("s3-bucket", &out.S3Bucket, f.S3Bucket)
	set("s3-key", &out.S3Key, f.S3Key)
	set("s3-object-version", &out.S3ObjectVersion, f.S3ObjectVersion)
	set("description", &out.Description, f.Description)

	if flags.Changed("timeout") {
		timeout := f.timeout
		out.Timeout = &timeout
	}
	if flags.Changed("memory-size") {
		memorySize := f.memorySize
		out.MemorySize = &memorySize
	}
	return out
}
