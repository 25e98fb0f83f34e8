package seller

import "github.com/bazaar-next/internal/provider"

// Handler 卖家侧接口处理器
type Handler struct {
	*provider.Container
}

// New 创建卖家处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
