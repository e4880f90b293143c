package interfaces

import (
	"github.com/google/wire"

	"promptforge/internal/interfaces/httpserver"
)

var InterfacesProvider = wire.NewSet(
	httpserver.NewHttpServer,
)
