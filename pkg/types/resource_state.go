package types

// FunctionConfiguration é o subconjunto da configuração remota que participa
// da comparação. FunctionARN e Version são apenas informativos.
type FunctionConfiguration struct {
	Role        string `json:"role"`
	Handler     string `json:"handler"`
	Description string `json:"description"`
	Timeout     int32  `json:"timeout"`
	MemorySize  int32  `json:"memory_size"`
	Runtime     string `json:"runtime"`
	CodeSha256  string `json:"code_sha256"`
	FunctionARN string `json:"function_arn,omitempty"`
	Version     string `json:"version,omitempty"`
}

// RemoteSnapshot é a visão tipada do estado atual na AWS. Exists=false é um
// estado válido, não um erro.
type RemoteSnapshot struct {
	Exists        bool
	Configuration FunctionConfiguration
	// Raw guarda a resposta original do provedor; o reconciliador a ignora.
	Raw any `json:"-"`
}
