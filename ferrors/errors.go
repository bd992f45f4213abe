package ferrors

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	MetaName       = "name"
	MetaType       = "type"
	MetaResolver   = "resolver"
	MetaResolvers  = "resolvers"
	MetaField      = "field"
	MetaDepth      = "depth"
	MetaMaxDepth   = "max_depth"
	MetaPlugin     = "plugin"
	MetaOperation  = "operation"
	MetaAnnotation = "annotation"
	MetaValueType  = "value_type"
	MetaTable      = "table"
	MetaAdapter    = "adapter"
	MetaDomain     = "domain"
	MetaScope      = "scope"
	MetaPath       = "path"
)

const (
	TextCodeNotFound              = "NAMED_VALUE_NOT_FOUND"
	TextCodeMissingAnnotation     = "ANNOTATION_MISSING"
	TextCodeTypeMismatch          = "TYPE_MISMATCH"
	TextCodeNotResolvable         = "RESOLVER_DECLINED"
	TextCodeInstantiationFailure  = "INSTANTIATION_FAILED"
	TextCodeNoResolverFound       = "NO_RESOLVER_FOUND"
	TextCodeResolutionFailure     = "RESOLUTION_FAILED"
	TextCodeCycleOrDepthExceeded  = "CYCLE_OR_DEPTH_EXCEEDED"
	TextCodeInvalidName           = "NAME_REQUIRED"
	TextCodeResolverRequired      = "RESOLVER_REQUIRED"
	TextCodePluginInitFailed      = "PLUGIN_INIT_FAILED"
	TextCodeDuplicatePlugin       = "PLUGIN_DUPLICATE"
	TextCodeTemplateInvalid       = "TEMPLATE_INVALID"
	TextCodeStoreRequired         = "STORE_REQUIRED"
	TextCodeStoreReadFailed       = "STORE_READ_FAILED"
	TextCodeStoreWriteFailed      = "STORE_WRITE_FAILED"
	TextCodeFixtureDecodeFailed   = "FIXTURE_DECODE_FAILED"
	TextCodeTemplateRenderFailure = "TEMPLATE_RENDER_FAILED"
	TextCodePathInvalid           = "PATH_INVALID"
)

var (
	ErrNotFound             = newSentinel(goerrors.CategoryNotFound, goerrors.CodeNotFound, TextCodeNotFound, "named value not found")
	ErrMissingAnnotation    = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeMissingAnnotation, "required annotation missing")
	ErrTypeMismatch         = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeTypeMismatch, "value is not assignable to requested type")
	ErrNotResolvable        = newSentinel(goerrors.CategoryOperation, 0, TextCodeNotResolvable, "resolver cannot resolve request")
	ErrInstantiationFailure = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeInstantiationFailure, "type cannot be instantiated")
	ErrNoResolverFound      = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeNoResolverFound, "no suitable resolver found")
	ErrResolutionFailure    = newSentinel(goerrors.CategoryInternal, goerrors.CodeInternal, TextCodeResolutionFailure, "resolution failed")
	ErrCycleOrDepthExceeded = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeCycleOrDepthExceeded, "maximum resolution depth exceeded")
	ErrInvalidName          = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeInvalidName, "name is required")
	ErrResolverRequired     = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeResolverRequired, "resolver is required")
	ErrPluginInitFailed     = newSentinel(goerrors.CategoryExternal, goerrors.CodeInternal, TextCodePluginInitFailed, "plugin initialization failed")
	ErrDuplicatePlugin      = newSentinel(goerrors.CategoryConflict, goerrors.CodeConflict, TextCodeDuplicatePlugin, "plugin already advertised")
	ErrTemplateInvalid      = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeTemplateInvalid, "placeholder template is invalid")
	ErrStoreRequired        = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeStoreRequired, "store is required")
	ErrPathInvalid          = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodePathInvalid, "property path is invalid")
)

// declined sentinels let a chain move on to its next member.
var declined = []*goerrors.Error{
	ErrNotFound,
	ErrMissingAnnotation,
	ErrTypeMismatch,
	ErrNotResolvable,
	ErrInstantiationFailure,
	ErrNoResolverFound,
}

func newSentinel(category goerrors.Category, code int, textCode, message string) *goerrors.Error {
	err := goerrors.New(message, category).WithTextCode(textCode)
	if code != 0 {
		err.WithCode(code)
	}
	return err
}

func IsSentinel(err error) bool {
	sentinel, ok := err.(*goerrors.Error)
	if !ok {
		return false
	}
	for _, candidate := range sentinels() {
		if sentinel == candidate {
			return true
		}
	}
	return false
}

func sentinels() []*goerrors.Error {
	return append(append([]*goerrors.Error(nil), declined...),
		ErrResolutionFailure,
		ErrCycleOrDepthExceeded,
		ErrInvalidName,
		ErrResolverRequired,
		ErrPluginInitFailed,
		ErrDuplicatePlugin,
		ErrTemplateInvalid,
		ErrStoreRequired,
		ErrPathInvalid,
	)
}

// IsFatal reports whether err must abort the enclosing build instead of
// letting a chain try its next member. Unknown errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrResolutionFailure) || errors.Is(err, ErrCycleOrDepthExceeded) {
		return true
	}
	return !IsDeclined(err)
}

// IsDeclined reports whether err only signals that a resolver could not serve
// the request.
func IsDeclined(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrResolutionFailure) || errors.Is(err, ErrCycleOrDepthExceeded) {
		return false
	}
	for _, sentinel := range declined {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func WrapSentinel(sentinel *goerrors.Error, message string, meta map[string]any) *goerrors.Error {
	if sentinel == nil {
		return nil
	}
	if message == "" {
		message = sentinel.Message
	}
	err := goerrors.New(message, sentinel.Category).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code).
		WithSeverity(sentinel.Severity)
	err.Source = sentinel
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

// WrapCause behaves like WrapSentinel but keeps causes reachable through
// errors.Is and errors.As alongside the sentinel.
func WrapCause(sentinel *goerrors.Error, message string, meta map[string]any, causes ...error) *goerrors.Error {
	err := WrapSentinel(sentinel, message, meta)
	if err == nil {
		return nil
	}
	kept := make([]error, 0, len(causes))
	for _, cause := range causes {
		if cause != nil {
			kept = append(kept, cause)
		}
	}
	if len(kept) > 0 {
		err.Source = &chained{sentinel: sentinel, causes: kept}
	}
	return err
}

type chained struct {
	sentinel *goerrors.Error
	causes   []error
}

func (c *chained) Error() string {
	return c.sentinel.Message
}

func (c *chained) Unwrap() []error {
	out := make([]error, 0, len(c.causes)+1)
	out = append(out, c.sentinel)
	return append(out, c.causes...)
}

func Wrap(err error, category goerrors.Category, textCode, message string, meta map[string]any) *goerrors.Error {
	if err == nil {
		return nil
	}
	if IsSentinel(err) {
		return WrapSentinel(err.(*goerrors.Error), message, meta)
	}
	if rich, ok := err.(*goerrors.Error); ok {
		clone := rich.Clone()
		if clone.TextCode == "" && textCode != "" {
			clone.TextCode = textCode
		}
		if meta != nil {
			clone.WithMetadata(meta)
		}
		return clone
	}
	if message == "" {
		message = err.Error()
	}
	wrapped := goerrors.New(message, category).WithTextCode(textCode)
	wrapped.Source = err
	if meta != nil {
		wrapped.WithMetadata(meta)
	}
	return wrapped
}

func NewBadInput(textCode, message string, meta map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).WithTextCode(textCode)
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

func WrapExternal(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryExternal, textCode, message, meta)
}

func As(err error) (*goerrors.Error, bool) {
	var rich *goerrors.Error
	if errors.As(err, &rich) {
		return rich, true
	}
	return nil, false
}
