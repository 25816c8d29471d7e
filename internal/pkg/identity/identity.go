package identity

import (
	"github.com/gin-gonic/gin"
)

// 角色常量
const (
	RoleUser  = 1
	RoleAdmin = 2
)

// Identity 已验证的调用者身份
// 由认证中间件构造，作为显式参数传入核心服务，服务层不做任何隐式读取
type Identity struct {
	UserID string
	Role   int
}

// IsAdmin 是否管理员
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

const contextKey = "identity"

// Set 将身份写入请求上下文（仅认证中间件调用）
func Set(c *gin.Context, id Identity) {
	c.Set(contextKey, id)
}

// FromContext 读取认证中间件写入的身份
func FromContext(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(contextKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
