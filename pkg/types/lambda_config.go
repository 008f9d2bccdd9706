package types

// FunctionInput DTO armazena os parâmetros brutos de uma função Lambda, como
// recebidos do Terraform, da linha de comando ou de um arquivo YAML/TOML.
// Só vira DesiredState depois de passar por NewDesiredState.
type FunctionInput struct {
	Name            string `json:"name" yaml:"name" toml:"name"`
	State           string `json:"state,omitempty" yaml:"state,omitempty" toml:"state"`
	Runtime         string `json:"runtime,omitempty" yaml:"runtime,omitempty" toml:"runtime"`
	RoleARN         string `json:"role_arn,omitempty" yaml:"role_arn,omitempty" toml:"role_arn"`
	Handler         string `json:"handler,omitempty" yaml:"handler,omitempty" toml:"handler"`
	Path            string `json:"path,omitempty" yaml:"path,omitempty" toml:"path"`
	S3Bucket        string `json:"s3_bucket,omitempty" yaml:"s3_bucket,omitempty" toml:"s3_bucket"`
	S3Key           string `json:"s3_key,omitempty" yaml:"s3_key,omitempty" toml:"s3_key"`
	S3ObjectVersion string `json:"s3_object_version,omitempty" yaml:"s3_object_version,omitempty" toml:"s3_object_version"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Timeout         *int32 `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"-"`
	MemorySize      *int32 `json:"memory_size,omitempty" yaml:"memory_size,omitempty" toml:"-"`
}
