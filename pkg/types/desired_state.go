package types

import (
	"fmt"
	"strings"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
)

const (
	DefaultTimeout    int32 = 3
	DefaultMemorySize int32 = 128
)

// State é o estado declarado para a função.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// CodeSource é a origem do pacote de código: LocalPath ou RemoteRef.
type CodeSource interface {
	isCodeSource()
}

// LocalPath aponta para um .zip no disco local.
type LocalPath struct {
	Path string
}

// RemoteRef aponta para um objeto S3 já publicado.
type RemoteRef struct {
	Bucket  string
	Key     string
	Version string
}

func (LocalPath) isCodeSource() {}
func (RemoteRef) isCodeSource() {}

// DesiredState é a intenção validada do chamador. Os campos são privados para
// que nenhum valor inválido escape de NewDesiredState.
type DesiredState struct {
	name        string
	state       State
	runtime     string
	roleARN     string
	handler     string
	code        CodeSource
	description string
	timeout     int32
	memorySize  int32
}

// NewDesiredState normaliza e valida a entrada. Qualquer contradição é
// reportada como faults.ValidationError antes de qualquer chamada de rede.
func NewDesiredState(in FunctionInput) (DesiredState, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return DesiredState{}, faults.Validation("name parameter is required")
	}

	state, err := parseState(in.State)
	if err != nil {
		return DesiredState{}, err
	}

	code, err := codeSourceFrom(in)
	if err != nil {
		return DesiredState{}, err
	}

	ds := DesiredState{
		name:        name,
		state:       state,
		runtime:     NormalizeRuntime(in.Runtime),
		roleARN:     strings.TrimSpace(in.RoleARN),
		handler:     strings.TrimSpace(in.Handler),
		code:        code,
		description: in.Description,
		timeout:     DefaultTimeout,
		memorySize:  DefaultMemorySize,
	}

	if in.Timeout != nil {
		if *in.Timeout <= 0 {
			return DesiredState{}, faults.Validation(fmt.Sprintf("timeout must be greater than zero, got %d", *in.Timeout))
		}
		ds.timeout = *in.Timeout
	}
	if in.MemorySize != nil {
		if *in.MemorySize <= 0 {
			return DesiredState{}, faults.Validation(fmt.Sprintf("memory_size must be greater than zero, got %d", *in.MemorySize))
		}
		ds.memorySize = *in.MemorySize
	}

	if ds.state == StatePresent && ds.runtime == "" {
		return DesiredState{}, faults.Validation("runtime parameter is required")
	}

	return ds, nil
}

func (d DesiredState) Name() string           { return d.name }
func (d DesiredState) State() State           { return d.state }
func (d DesiredState) Runtime() string        { return d.runtime }
func (d DesiredState) RoleARN() string        { return d.roleARN }
func (d DesiredState) Handler() string        { return d.handler }
func (d DesiredState) CodeSource() CodeSource { return d.code }
func (d DesiredState) Description() string    { return d.description }
func (d DesiredState) Timeout() int32         { return d.timeout }
func (d DesiredState) MemorySize() int32      { return d.memorySize }

func parseState(raw string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(StatePresent):
		return StatePresent, nil
	case string(StateAbsent):
		return StateAbsent, nil
	default:
		return "", faults.Validation(fmt.Sprintf("state must be one of present, absent; got %q", raw))
	}
}

// codeSourceFrom aplica a exclusão mútua entre {path} e {s3_bucket, s3_key, s3_object_version}.
func codeSourceFrom(in FunctionInput) (CodeSource, error) {
	path := strings.TrimSpace(in.Path)
	bucket := strings.TrimSpace(in.S3Bucket)
	key := strings.TrimSpace(in.S3Key)
	version := strings.TrimSpace(in.S3ObjectVersion)

	remoteSet := bucket != "" || key != "" || version != ""
	if path != "" && remoteSet {
		return nil, faults.Validation("parameters are mutually exclusive: path and s3_bucket/s3_key/s3_object_version")
	}

	switch {
	case path != "":
		return LocalPath{Path: path}, nil
	case !remoteSet:
		return nil, nil
	case bucket == "" || key == "":
		return nil, faults.Validation("s3_bucket and s3_key must be provided together")
	default:
		return RemoteRef{Bucket: bucket, Key: key, Version: version}, nil
	}
}

// NormalizeRuntime aceita os apelidos sem ponto usados em alguns pipelines.
func NormalizeRuntime(runtime string) string {
	rt := strings.ToLower(strings.TrimSpace(runtime))
	switch rt {
	case "providedal2":
		return "provided.al2"
	case "providedal2023":
		return "provided.al2023"
	default:
		return rt
	}
}
