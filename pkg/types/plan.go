package types

// Action é a decisão tomada pelo Differ.
type Action int

const (
	ActionNoOp Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "noop"
	}
}

// ConfigPatch contém apenas os campos cujo valor desejado difere do remoto.
// Campo nil significa "sem alteração".
type ConfigPatch struct {
	Role        *string
	Handler     *string
	Description *string
	Timeout     *int32
	MemorySize  *int32
}

// Empty indica que nenhuma alteração de configuração é necessária.
func (p ConfigPatch) Empty() bool {
	return len(p.Fields()) == 0
}

// Fields lista os campos presentes no patch, em ordem estável.
func (p ConfigPatch) Fields() []string {
	var fields []string
	if p.Role != nil {
		fields = append(fields, "role")
	}
	if p.Handler != nil {
		fields = append(fields, "handler")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Timeout != nil {
		fields = append(fields, "timeout")
	}
	if p.MemorySize != nil {
		fields = append(fields, "memory_size")
	}
	return fields
}

type CodeKind int

const (
	CodeNoChange CodeKind = iota
	CodeUploadInline
	CodeReferenceObject
)

func (k CodeKind) String() string {
	switch k {
	case CodeUploadInline:
		return "upload_inline"
	case CodeReferenceObject:
		return "reference_object"
	default:
		return "no_change"
	}
}

// CodeDecision descreve o que fazer com o código da função.
type CodeDecision struct {
	Kind    CodeKind
	ZipFile []byte
	Bucket  string
	Key     string
	Version string
}

// FunctionDescriptor é a requisição completa de criação.
type FunctionDescriptor struct {
	Name        string
	Role        string
	Handler     string
	Runtime     string
	Description string
	Timeout     int32
	MemorySize  int32
	Code        CodeDecision
}

// Phase marca até onde a reconciliação chegou.
type Phase string

const (
	PhaseStart   Phase = "start"
	PhaseFetched Phase = "fetched"
	PhaseDiffed  Phase = "diffed"
	PhaseApplied Phase = "applied"
	PhaseDone    Phase = "done"
	PhaseFailed  Phase = "failed"
)

// Result é o desfecho de uma reconciliação bem sucedida.
type Result struct {
	Changed      bool
	Action       Action
	Phase        Phase
	ConfigFields []string
	Code         CodeKind
	DryRun       bool
}
