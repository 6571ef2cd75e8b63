package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
)

// validate valida los tags `validate` de los DTO; los errores usan el nombre JSON del campo.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// parseBody decodifica el JSON y valida. Devuelve un error de dominio listo para writeError.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("", "cuerpo inválido")
	}
	return validateStruct(out)
}

// parseQuery decodifica la query string, aplica la paginación por defecto y valida.
func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return domain.Invalid("", "parámetros de consulta inválidos")
	}
	if p, ok := out.(interface{ DefaultPage() }); ok {
		p.DefaultPage()
	}
	return validateStruct(out)
}

func validateStruct(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.Invalid(fieldPath(fe), "no cumple la regla %s", ruleOf(fe))
	}
	return domain.Invalid("", "%s", err.Error())
}

// fieldPath quita el nombre del struct raíz: "EstimateRequest.new_customer.name" → "new_customer.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return fe.Tag()
}

// writeError traduce errores de dominio a respuestas HTTP.
// Forbidden y NotFound responden igual para no revelar la existencia del recurso.
func writeError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto al guardar, intente de nuevo"})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	default:
		requestLogger(c).Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

// ErrorHandler manejador de errores de la app Fiber: rutas inexistentes, panics
// recuperados y errores que los handlers devuelven sin escribir respuesta.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code := "HTTP_ERROR"
		if ferr.Code == fiber.StatusNotFound {
			code = "NOT_FOUND"
		}
		return c.Status(ferr.Code).JSON(dto.ErrorResponse{Code: code, Message: ferr.Message})
	}
	return writeError(c, err)
}
