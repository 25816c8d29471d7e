package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应信封，所有接口成功失败都走同一结构
// code 为 0 表示业务成功，非 0 业务码见 code.go
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 业务成功，HTTP 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 业务失败，HTTP 状态码与业务码由调用方给定
// 多数 handler 不直接调用，而是经 FromError 按哨兵错误统一映射
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
	})
}
