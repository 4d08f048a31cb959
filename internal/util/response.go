package util

import (
	"github.com/gin-gonic/gin"
)

// 业务错误码
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeConflict     = 40002
	CodeCredentials  = 40003
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// JSON writes a payload with the given status. List endpoints send bare
// arrays so the browser client can iterate them directly.
func JSON(c *gin.Context, httpStatus int, data interface{}) {
	c.JSON(httpStatus, data)
}

// Message 统一的带提示语返回，extra 中的字段会合并进响应体
func Message(c *gin.Context, httpStatus int, msg string, extra gin.H) {
	body := gin.H{
		"code":    CodeOK,
		"message": msg,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// Abort writes an error and stops the handler chain.
func Abort(c *gin.Context, httpStatus int, code int, msg string) {
	Error(c, httpStatus, code, msg)
	c.Abort()
}
