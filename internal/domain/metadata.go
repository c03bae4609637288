package domain

import (
	"encoding/json"
	"fmt"
)

type MetaType string

const (
	MetaPython    MetaType = "python"
	MetaScript    MetaType = "script"
	MetaTypeDecl  MetaType = "type_decl"
	MetaBinding   MetaType = "binding"
	MetaComponent MetaType = "component"
	MetaHook      MetaType = "hook"
	MetaContext   MetaType = "context"
	MetaHOC       MetaType = "hoc"
	MetaGo        MetaType = "go"
	MetaRust      MetaType = "rust"
	MetaSolidity  MetaType = "solidity"
)

// Metadata is the closed set of per-(language, kind) attribute structs a
// chunk may carry.
type Metadata interface {
	MetaType() MetaType
	EnclosingClass() string
}

type PythonMeta struct {
	ClassName  string   `json:"class_name,omitempty"`
	Decorators []string `json:"decorators,omitempty"`
	Bases      []string `json:"bases,omitempty"`
	IsAsync    bool     `json:"is_async,omitempty"`
	Docstring  string   `json:"docstring,omitempty"`
}

func (m *PythonMeta) MetaType() MetaType     { return MetaPython }
func (m *PythonMeta) EnclosingClass() string { return m.ClassName }

// ScriptMeta describes JavaScript/TypeScript functions, methods and classes.
type ScriptMeta struct {
	ClassName       string `json:"class_name,omitempty"`
	Extends         string `json:"extends,omitempty"`
	Annotation      string `json:"annotation,omitempty"`
	IsAsync         bool   `json:"is_async,omitempty"`
	IsGenerator     bool   `json:"is_generator,omitempty"`
	IsArrow         bool   `json:"is_arrow,omitempty"`
	IsStatic        bool   `json:"is_static,omitempty"`
	IsGetter        bool   `json:"is_getter,omitempty"`
	IsSetter        bool   `json:"is_setter,omitempty"`
	IsPrivate       bool   `json:"is_private,omitempty"`
	IsAbstract      bool   `json:"is_abstract,omitempty"`
	IsExported      bool   `json:"is_exported,omitempty"`
	IsDefaultExport bool   `json:"is_default_export,omitempty"`
	ExpressionBody  bool   `json:"expression_body,omitempty"`
}

func (m *ScriptMeta) MetaType() MetaType     { return MetaScript }
func (m *ScriptMeta) EnclosingClass() string { return m.ClassName }

// TypeDeclMeta discriminates TypeScript interfaces, type aliases and enums,
// which are reported as class-kind chunks.
type TypeDeclMeta struct {
	IsInterface bool     `json:"is_interface,omitempty"`
	IsTypeAlias bool     `json:"is_type_alias,omitempty"`
	IsEnum      bool     `json:"is_enum,omitempty"`
	IsProps     bool     `json:"is_props,omitempty"`
	IsExported  bool     `json:"is_exported,omitempty"`
	Extends     []string `json:"extends,omitempty"`
}

func (m *TypeDeclMeta) MetaType() MetaType     { return MetaTypeDecl }
func (m *TypeDeclMeta) EnclosingClass() string { return "" }

// BindingMeta describes a const-style binding initialized by a wrapper call.
type BindingMeta struct {
	Callee          string `json:"callee"`
	TypeArgs        string `json:"type_args,omitempty"`
	Annotation      string `json:"annotation,omitempty"`
	IsExported      bool   `json:"is_exported,omitempty"`
	IsDefaultExport bool   `json:"is_default_export,omitempty"`
}

func (m *BindingMeta) MetaType() MetaType     { return MetaBinding }
func (m *BindingMeta) EnclosingClass() string { return "" }

// ComponentMeta is shared by component and provider chunks.
type ComponentMeta struct {
	ComponentType   string   `json:"component_type"`
	PropsType       string   `json:"props_type,omitempty"`
	HasJSX          bool     `json:"has_jsx"`
	IsDefaultExport bool     `json:"is_default_export"`
	HooksUsed       []string `json:"hooks_used"`
	RelatedContext  string   `json:"related_context,omitempty"`
}

func (m *ComponentMeta) MetaType() MetaType     { return MetaComponent }
func (m *ComponentMeta) EnclosingClass() string { return "" }

type HookMeta struct {
	UsedHooks  []string `json:"used_hooks"`
	IsExported bool     `json:"is_exported,omitempty"`
}

func (m *HookMeta) MetaType() MetaType     { return MetaHook }
func (m *HookMeta) EnclosingClass() string { return "" }

type ContextMeta struct {
	ContextType string `json:"context_type"`
}

func (m *ContextMeta) MetaType() MetaType     { return MetaContext }
func (m *ContextMeta) EnclosingClass() string { return "" }

type HOCMeta struct {
	HasJSX         bool   `json:"has_jsx"`
	ComponentParam string `json:"component_param,omitempty"`
}

func (m *HOCMeta) MetaType() MetaType     { return MetaHOC }
func (m *HOCMeta) EnclosingClass() string { return "" }

type ConcurrencyPatterns struct {
	Goroutines          int `json:"goroutines"`
	Channels            int `json:"channels"`
	MutexOperations     int `json:"mutex_operations"`
	WaitGroupOperations int `json:"waitgroup_operations"`
	Selects             int `json:"select"`
}

func (p ConcurrencyPatterns) Any() bool {
	return p.Goroutines+p.Channels+p.MutexOperations+p.WaitGroupOperations+p.Selects > 0
}

// GoMeta covers Go functions and type declarations. Receiver functions are
// top-level in Go, so they link to their type through Receiver rather than
// an enclosing class.
type GoMeta struct {
	GoType              string               `json:"go_type,omitempty"`
	Receiver            string               `json:"receiver,omitempty"`
	ReceiverType        string               `json:"receiver_type,omitempty"`
	TypeParams          string               `json:"type_params,omitempty"`
	IsExported          bool                 `json:"is_exported,omitempty"`
	IsInterface         bool                 `json:"is_interface,omitempty"`
	HasMutex            bool                 `json:"has_mutex,omitempty"`
	HasWaitGroup        bool                 `json:"has_waitgroup,omitempty"`
	HasChannel          bool                 `json:"has_channel,omitempty"`
	ConcurrencyPatterns *ConcurrencyPatterns `json:"concurrency_patterns,omitempty"`
}

func (m *GoMeta) MetaType() MetaType     { return MetaGo }
func (m *GoMeta) EnclosingClass() string { return "" }

type RustMeta struct {
	RustType  string `json:"rust_type,omitempty"`
	ClassName string `json:"class_name,omitempty"`
	ImplFor   string `json:"impl_for,omitempty"`
	Trait     string `json:"trait,omitempty"`
	IsPublic  bool   `json:"is_public,omitempty"`
	IsAsync   bool   `json:"is_async,omitempty"`
	IsUnsafe  bool   `json:"is_unsafe,omitempty"`
	IsConst   bool   `json:"is_const,omitempty"`
	IsMacro   bool   `json:"is_macro,omitempty"`
}

func (m *RustMeta) MetaType() MetaType     { return MetaRust }
func (m *RustMeta) EnclosingClass() string { return m.ClassName }

type SolidityMeta struct {
	SolidityType    string   `json:"solidity_type,omitempty"`
	ClassName       string   `json:"class_name,omitempty"`
	Inherits        []string `json:"inherits,omitempty"`
	Visibility      string   `json:"visibility,omitempty"`
	StateMutability string   `json:"state_mutability,omitempty"`
	Modifiers       []string `json:"modifiers,omitempty"`
	IsPayable       bool     `json:"is_payable,omitempty"`
	IsVirtual       bool     `json:"is_virtual,omitempty"`
	IsOverride      bool     `json:"is_override,omitempty"`
	IsConstructor   bool     `json:"is_constructor,omitempty"`
	IsModifier      bool     `json:"is_modifier,omitempty"`
	IsEvent         bool     `json:"is_event,omitempty"`
	IsAbstract      bool     `json:"is_abstract,omitempty"`
}

func (m *SolidityMeta) MetaType() MetaType     { return MetaSolidity }
func (m *SolidityMeta) EnclosingClass() string { return m.ClassName }

func newMetadata(t MetaType) (Metadata, error) {
	switch t {
	case MetaPython:
		return &PythonMeta{}, nil
	case MetaScript:
		return &ScriptMeta{}, nil
	case MetaTypeDecl:
		return &TypeDeclMeta{}, nil
	case MetaBinding:
		return &BindingMeta{}, nil
	case MetaComponent:
		return &ComponentMeta{}, nil
	case MetaHook:
		return &HookMeta{}, nil
	case MetaContext:
		return &ContextMeta{}, nil
	case MetaHOC:
		return &HOCMeta{}, nil
	case MetaGo:
		return &GoMeta{}, nil
	case MetaRust:
		return &RustMeta{}, nil
	case MetaSolidity:
		return &SolidityMeta{}, nil
	}
	return nil, fmt.Errorf("unknown metadata type %q", t)
}

type chunkJSON struct {
	Kind       ChunkKind       `json:"kind"`
	Name       string          `json:"name,omitempty"`
	StartLine  int             `json:"start_line"`
	EndLine    int             `json:"end_line"`
	Code       string          `json:"code"`
	Confidence float64         `json:"confidence"`
	Oversized  bool            `json:"oversized,omitempty"`
	MetaType   MetaType        `json:"metadata_type,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

func (c Chunk) MarshalJSON() ([]byte, error) {
	out := chunkJSON{
		Kind:       c.Kind,
		Name:       c.Name,
		StartLine:  c.StartLine,
		EndLine:    c.EndLine,
		Code:       c.Code,
		Confidence: c.Confidence,
		Oversized:  c.Oversized,
	}
	if c.Meta != nil {
		raw, err := json.Marshal(c.Meta)
		if err != nil {
			return nil, err
		}
		out.MetaType = c.Meta.MetaType()
		out.Metadata = raw
	}
	return json.Marshal(out)
}

func (c *Chunk) UnmarshalJSON(data []byte) error {
	var in chunkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Chunk{
		Kind:       in.Kind,
		Name:       in.Name,
		StartLine:  in.StartLine,
		EndLine:    in.EndLine,
		Code:       in.Code,
		Confidence: in.Confidence,
		Oversized:  in.Oversized,
	}
	if in.MetaType == "" {
		return nil
	}
	meta, err := newMetadata(in.MetaType)
	if err != nil {
		return err
	}
	if len(in.Metadata) > 0 {
		if err := json.Unmarshal(in.Metadata, meta); err != nil {
			return fmt.Errorf("decode %s metadata: %w", in.MetaType, err)
		}
	}
	c.Meta = meta
	return nil
}
