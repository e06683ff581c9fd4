package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/scaffold"
	"github.com/grovetools/cydantic/theme"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints err with a hint for its error code and returns it unchanged
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	t := theme.DefaultTheme
	fmt.Fprintf(h.Out, "%s %s\n", t.Error.Render("Error:"), message(err))

	if hint := h.hint(err); hint != "" {
		fmt.Fprintln(h.Out, t.Muted.Render(hint))
	}

	if h.Verbose {
		if cydErr, ok := errors.As(err); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", cydErr.ToJSON())
		}
	}
	return err
}

// message joins the messages along err's chain without the error codes.
func message(err error) string {
	cydErr, ok := errors.As(err)
	if !ok {
		return err.Error()
	}
	if cydErr.Cause == nil {
		return cydErr.Message
	}
	return cydErr.Message + ": " + message(cydErr.Cause)
}

// rootCode returns the code of the innermost CydanticError in err's chain.
func rootCode(err error) errors.ErrorCode {
	var code errors.ErrorCode
	for err != nil {
		if cydErr, ok := err.(*errors.CydanticError); ok {
			code = cydErr.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return code
}

func detail(err error, key string) interface{} {
	if cydErr, ok := errors.As(err); ok {
		return cydErr.Details[key]
	}
	return nil
}

// commandOutput returns the captured output of the first failed command in
// err's chain.
func commandOutput(err error) string {
	for err != nil {
		if cydErr, ok := err.(*errors.CydanticError); ok {
			if out, ok := cydErr.Details["output"].(string); ok && out != "" {
				return out
			}
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = unwrapper.Unwrap()
	}
	return ""
}

func (h *ErrorHandler) hint(err error) string {
	switch rootCode(err) {
	case errors.ErrCodeModuleNotFound:
		return "Check the path given to -s/--schema."

	case errors.ErrCodeNoExecutor:
		return fmt.Sprintf("Supported schema modules: %v", detail(err, "supported"))

	case errors.ErrCodeModuleLoadFailed:
		if host, ok := detail(err, "hostVersion").(string); ok {
			return fmt.Sprintf("Point CYDANTIC_GO at a %s go binary.", host)
		}
		return ""

	case errors.ErrCodeCommandFailed:
		return commandOutput(err)

	case errors.ErrCodeModelNotFound:
		return "Use -m/--model to select another exported name."

	case errors.ErrCodeModelNotExportable:
		return "A model is a struct value, a zero-argument factory, or implements ModelJSONSchema(byAlias bool)."

	case errors.ErrCodeCommandNotFound:
		return "Building .go schema modules needs the Go toolchain on PATH (or set CYDANTIC_GO)."

	case errors.ErrCodeScaffoldInvalid:
		return "Fields are name[?]:type[:alias], type one of: " + strings.Join(scaffold.FieldTypes(), ", ")

	case errors.ErrCodeOutputExists:
		return "Pass --force to overwrite it."

	case errors.ErrCodeConfigNotFound:
		return "Check the path given to -c/--config."

	case errors.ErrCodeConfigInvalid:
		return "See the config schema written by tools/schema-generator."

	default:
		return ""
	}
}
