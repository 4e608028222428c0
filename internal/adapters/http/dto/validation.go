package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jsamuelsen/lingo-service/internal/domain"
)

// jsonTagParts is the number of parts when splitting a JSON tag by comma.
// The first part is the field name, subsequent parts are options like "omitempty".
const jsonTagParts = 2

// TagErrorCode is the struct tag that overrides the code reported for a
// field's violations. Without it the code is "error.validation.<rule>".
const TagErrorCode = "errcode"

// validationCodePrefix prefixes rule names to form default violation codes.
const validationCodePrefix = "error.validation."

// boundRules are the rules whose parameters are exposed as template args.
var boundRules = map[string]struct{}{
	"min": {}, "max": {}, "len": {}, "gte": {}, "lte": {}, "gt": {}, "lt": {},
}

var (
	// validate is the singleton validator instance.
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator instance.
// It initializes the validator with custom validations on first call.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use JSON tag names in namespaces so violations name wire fields.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", jsonTagParts)[0]
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("uuid", validateUUID)
		_ = validate.RegisterValidation("notempty", validateNotEmpty)
	})

	return validate
}

// Validatable is implemented by request types with rules beyond struct
// tags. Violations are added to tree after tag validation has run.
type Validatable interface {
	Validate(tree *domain.ValidationTree)
}

// Validate runs tag validation and, if implemented, Validatable. It returns
// a *domain.ValidationError holding every violation, or nil.
func Validate(v any) error {
	tree := domain.ValidationTree{}

	if err := Validator().Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("validating %T: %w", v, err)
		}

		tree = ValidationTreeFrom(v, err)
	}

	if validatable, ok := v.(Validatable); ok {
		validatable.Validate(&tree)
	}

	if tree.Empty() {
		return nil
	}

	return &domain.ValidationError{Tree: tree}
}

// BindAndValidate binds JSON body to the struct and validates it.
// A body that cannot be decoded yields *domain.InvalidBodyError.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return &domain.InvalidBodyError{Cause: err}
	}

	return Validate(v)
}

// BindQueryAndValidate binds query parameters and validates.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return &domain.InvalidBodyError{Cause: err}
	}

	return Validate(v)
}

// BindURIAndValidate binds path parameters and validates.
func BindURIAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindUri(v); err != nil {
		return &domain.InvalidBodyError{Cause: err}
	}

	return Validate(v)
}

// ValidationTreeFrom converts validator errors for v into a validation tree.
// Nested structs become struct entries and dive targets become list
// entries, so the tree mirrors the shape of the request. Errors that are
// not validator.ValidationErrors produce an empty tree.
func ValidationTreeFrom(v any, err error) domain.ValidationTree {
	tree := domain.ValidationTree{}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return tree
	}

	root := indirectType(reflect.TypeOf(v))

	for _, fe := range validationErrs {
		addFieldError(&tree, root, fe)
	}

	return tree
}

// pathSegment is one step of a validator namespace, e.g. "items[2]".
type pathSegment struct {
	name    string
	goName  string
	index   int
	indexed bool
	element bool
}

func addFieldError(tree *domain.ValidationTree, root reflect.Type, fe validator.FieldError) {
	segments := splitNamespace(fe.Namespace(), fe.StructNamespace())
	if len(segments) == 0 {
		return
	}

	field, _ := lookupField(root, segments)

	node := tree
	for _, seg := range segments[:len(segments)-1] {
		if seg.indexed {
			node = node.Item(seg.name, seg.index)
		} else {
			node = node.Struct(seg.name)
		}
	}

	last := segments[len(segments)-1]
	if last.indexed {
		node = node.Item(last.name, last.index)
	}

	node.AddField(last.name, violationFor(fe, field, last.element))
}

func violationFor(fe validator.FieldError, field *reflect.StructField, element bool) domain.Violation {
	code := validationCodePrefix + fe.Tag()

	args := map[string]string{"field": fe.Field()}
	if fe.Param() != "" {
		args["param"] = fe.Param()
	}

	if field != nil {
		if override := field.Tag.Get(TagErrorCode); override != "" {
			code = override
		}

		for rule, param := range declaredBounds(field.Tag.Get("validate"), element) {
			args[rule] = param
		}
	}

	return domain.Violation{Code: code, Args: args}
}

// declaredBounds returns the bound rules declared in a validate tag. For
// list elements only the rules after "dive" apply.
func declaredBounds(tag string, element bool) map[string]string {
	rules := strings.Split(tag, ",")

	for i, rule := range rules {
		if rule != "dive" {
			continue
		}

		if element {
			rules = rules[i+1:]
		} else {
			rules = rules[:i]
		}

		break
	}

	bounds := make(map[string]string)

	for _, rule := range rules {
		name, param, ok := strings.Cut(rule, "=")
		if !ok {
			continue
		}

		if _, bound := boundRules[name]; bound {
			bounds[name] = param
		}
	}

	return bounds
}

// splitNamespace pairs the JSON-named namespace with the Go-named one,
// dropping the leading type name.
func splitNamespace(namespace, structNamespace string) []pathSegment {
	names := strings.Split(namespace, ".")
	goNames := strings.Split(structNamespace, ".")

	if len(names) != len(goNames) || len(names) < 2 {
		return nil
	}

	segments := make([]pathSegment, 0, len(names)-1)

	for i := 1; i < len(names); i++ {
		seg := pathSegment{}
		seg.name, seg.index, seg.indexed = cutIndex(names[i])
		seg.goName, seg.element = cutKey(goNames[i])
		segments = append(segments, seg)
	}

	return segments
}

// cutIndex splits "items[3]" into "items", 3, true. Non-numeric keys, as
// produced by maps, stay part of the name.
func cutIndex(s string) (string, int, bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return s, 0, false
	}

	index, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil {
		return s, 0, false
	}

	return s[:open], index, true
}

// cutKey strips any "[...]" suffix, numeric or not, from "meta[k]".
func cutKey(s string) (string, bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return s, false
	}

	return s[:open], true
}

// lookupField walks t along segments and returns the struct field the
// last segment refers to.
func lookupField(t reflect.Type, segments []pathSegment) (*reflect.StructField, bool) {
	var field reflect.StructField

	for i, seg := range segments {
		if t == nil || t.Kind() != reflect.Struct {
			return nil, false
		}

		f, ok := t.FieldByName(seg.goName)
		if !ok {
			return nil, false
		}

		field = f
		t = indirectType(f.Type)

		if seg.element && i < len(segments)-1 {
			t = elemType(t)
		}
	}

	return &field, true
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func elemType(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return indirectType(t.Elem())
	default:
		return t
	}
}

// validateUUID validates that a string is a valid UUID.
func validateUUID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Empty is ok, use 'required' tag if needed
	}

	_, err := uuid.Parse(value)

	return err == nil
}

// validateNotEmpty validates that a string is not empty after trimming whitespace.
func validateNotEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.TrimSpace(value) != ""
}
