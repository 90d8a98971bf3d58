package apihttp

import (
	"context"
	"errors"
	"net/http"

	"aquasmart-portal/internal/auth"
	"aquasmart-portal/internal/backend"
	billing "aquasmart-portal/internal/billing/domain"
	consumptionapp "aquasmart-portal/internal/consumption/application"
	consumption "aquasmart-portal/internal/consumption/domain"
	"aquasmart-portal/internal/export"
	requests "aquasmart-portal/internal/requests/domain"
)

// Dialog kinds.
const (
	KindAuth       = "auth"
	KindForbidden  = "forbidden"
	KindConnection = "connection"
	KindValidation = "validation"
	KindInfo       = "info"
	KindExport     = "export"
	KindNotFound   = "not_found"
	KindBackend    = "backend"
	KindError      = "error"
)

// Operations name the user action an error dialog belongs to.
const (
	opLogin        = "login"
	opPreRegister  = "pre_register"
	opProfile      = "profile"
	opConsumption  = "consumption"
	opInvoices     = "invoices"
	opExport       = "export"
	opFlowRequest  = "flow_request"
	opErrorReport  = "error_report"
	opUsers        = "users"
	opUnauthorized = "auth"
)

var operationTitles = map[string]string{
	opLogin:       "Error de inicio de sesión",
	opPreRegister: "Error de Pre Registro",
	opProfile:     "Error al consultar el perfil",
	opConsumption: "Error al consultar el consumo",
	opInvoices:    "Error al consultar las facturas",
	opExport:      "Error al exportar",
	opFlowRequest: "Error en la solicitud de cambio de caudal",
	opErrorReport: "Error al enviar el reporte",
	opUsers:       "Error en la gestión de usuarios",
}

const (
	titleSession    = "Sesión expirada"
	titleForbidden  = "Acceso denegado"
	titleConnection = "Error de conexión"
	titleValidation = "Datos inválidos"
	titleNoData     = "Sin datos"
	titleNotFound   = "No encontrado"

	messageSession    = "Su sesión ha expirado o no es válida. Inicie sesión nuevamente."
	messageForbidden  = "No tiene permisos para realizar esta acción."
	messageConnection = "No fue posible conectar con el servidor. Verifique su conexión e intente nuevamente."
	messageNotFound   = "El recurso solicitado no existe."
	messageUnexpected = "Ocurrió un error inesperado. Intente nuevamente."
	messageExport     = "No fue posible generar el archivo. Intente nuevamente."
	messageNothing    = "No hay datos para exportar en el rango seleccionado."
)

// Dialog is the single-acknowledgement modal shown to the user.
type Dialog struct {
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type dialogResponse struct {
	Dialog Dialog `json:"dialog"`
}

var validationMessages = []struct {
	err     error
	message string
}{
	{consumption.ErrInvalidRange, "La fecha inicial debe ser anterior o igual a la fecha final."},
	{consumption.ErrEmptyRange, "Seleccione la fecha inicial y la fecha final."},
	{consumption.ErrInvalidDate, "Las fechas deben tener el formato AAAA-MM-DD."},
	{consumption.ErrInvalidGranularity, "La agrupación debe ser hora, día, semana o mes."},
	{consumption.ErrGranularityNotAllowed, "La agrupación seleccionada no está disponible para el rango."},
	{consumptionapp.ErrMissingSubject, "Seleccione un lote, predio o distrito."},
	{backend.ErrInvalidScope, "El tipo de consulta debe ser lote, predio o distrito."},
	{billing.ErrInvalidDateFilter, "Las fechas del filtro deben tener el formato AAAA-MM-DD."},
	{billing.ErrInvalidDateRange, "La fecha inicial del filtro debe ser anterior o igual a la fecha final."},
	{requests.ErrMissingLot, "Seleccione el lote."},
	{requests.ErrInvalidFlow, "El caudal solicitado debe ser un número mayor que cero."},
	{requests.ErrMissingJustification, "Escriba la justificación de la solicitud."},
	{requests.ErrMissingCategory, "Seleccione el tipo de falla."},
	{requests.ErrUnknownCategory, "El tipo de falla seleccionado no es válido."},
	{requests.ErrMissingDescription, "Describa el error encontrado."},
	{requests.ErrTextTooLong, "El texto supera la longitud máxima permitida."},
	{requests.ErrMissingUserID, "Seleccione el usuario."},
	{requests.ErrEmptyUpdate, "No hay cambios para guardar."},
	{requests.ErrInvalidEmail, "El correo electrónico no es válido."},
	{requests.ErrInvalidPhone, "El teléfono debe tener entre 7 y 15 dígitos."},
	{export.ErrUnsupportedFormat, "El formato de exportación no está disponible."},
	{errMissingField, "Complete todos los campos obligatorios."},
	{errMalformedBody, "La solicitud no tiene un formato válido."},
}

var (
	errMissingField  = errors.New("apihttp: missing required field")
	errMalformedBody = errors.New("apihttp: malformed request body")
)

// classify maps an error to the status and dialog shown for op.
func (h *Handler) classify(op string, err error) (int, Dialog) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, Dialog{Kind: KindForbidden, Title: titleForbidden, Message: messageForbidden}
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, backend.ErrUnauthorized),
		errors.Is(err, backend.ErrMissingCredential):
		return http.StatusUnauthorized, Dialog{Kind: KindAuth, Title: titleSession, Message: messageSession, Redirect: h.loginPath}
	case errors.Is(err, backend.ErrConnection), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, Dialog{Kind: KindConnection, Title: titleConnection, Message: messageConnection}
	case errors.Is(err, export.ErrNothingToExport):
		return http.StatusOK, Dialog{Kind: KindInfo, Title: titleNoData, Message: messageNothing}
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, Dialog{Kind: KindNotFound, Title: titleNotFound, Message: messageNotFound}
	}

	for _, v := range validationMessages {
		if errors.Is(err, v.err) {
			return http.StatusBadRequest, Dialog{Kind: KindValidation, Title: titleValidation, Message: v.message}
		}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		message := apiErr.Message
		if message == "" {
			message = messageUnexpected
		}
		return status, Dialog{Kind: KindBackend, Title: titleFor(op), Message: message}
	}

	if op == opExport {
		return http.StatusInternalServerError, Dialog{Kind: KindExport, Title: titleFor(op), Message: messageExport}
	}
	return http.StatusInternalServerError, Dialog{Kind: KindError, Title: titleFor(op), Message: messageUnexpected}
}

func titleFor(op string) string {
	if title, ok := operationTitles[op]; ok {
		return title
	}
	return "Error"
}

// fail writes the dialog for err and logs it at a level matching its kind.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		h.logger.Debug().Str("op", op).Msg("client went away")
		return
	}
	status, dialog := h.classify(op, err)
	event := h.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).
		Str("op", op).
		Str("kind", dialog.Kind).
		Int("status", status).
		Str("request_id", requestID(r)).
		Msg("request failed")
	h.writeJSON(w, r, status, dialogResponse{Dialog: dialog})
}

// authError adapts fail to the auth middleware.
func (h *Handler) authError(w http.ResponseWriter, r *http.Request, err error) {
	h.fail(w, r, opUnauthorized, err)
}

func infoDialog(message string) *Dialog {
	return &Dialog{Kind: KindInfo, Title: titleNoData, Message: message}
}
