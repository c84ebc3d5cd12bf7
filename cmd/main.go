package main

import (
	"go.uber.org/fx"

	"red-envelope/internal/service"
)

func main() {
	fx.New(service.Options()).Run()
}
