package response

import "github.com/gin-gonic/gin"

// Every failure kind keeps its own stable code so thin clients can tell
// "create a new session" from "you are not authorized" from "try again".
const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeNoActiveSession    = 40300
	CodeSessionMismatch    = 40301
	CodeUsageNotFound      = 40400
	CodeSessionStateLost   = 40900
	CodeInternalServer     = 50000
	CodeStorageFailure     = 50001
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData reports a failure that still carries a payload, e.g. a
// partially processed screening batch.
func ErrorWithData(c *gin.Context, httpStatus, code int, message string, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}
