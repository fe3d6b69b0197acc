package interfaces

import (
	transporthttp "Dominion/internal/shared/transport/http"
	"Dominion/internal/world/interfaces/handler/http"

	"github.com/gin-gonic/gin"
)

type Module struct {
	httpHandler *http.HttpHandler
}

func New(rt http.WorldRuntime, opt http.Options) *Module {
	return &Module{httpHandler: http.NewHttpHandler(rt, opt)}
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

var _ transporthttp.Registrar = (*Module)(nil)
