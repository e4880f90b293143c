//go:build wireinject

package main

import (
	"github.com/google/wire"

	"promptforge/internal/application/generator"
	"promptforge/internal/domain"
	"promptforge/internal/infrastructure"
	"promptforge/internal/interfaces"
	"promptforge/internal/interfaces/httpserver/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		generator.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}

func CreateDataInitializer() (*DataInitializer, error) {
	wire.Build(
		infrastructure.InfrastructureProvider,
		wire.Struct(new(DataInitializer), "*"),
	)
	return nil, nil
}
