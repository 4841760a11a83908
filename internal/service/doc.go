// Package service provides the named-service registry behind the container.
//
// Components:
//   - Registry: thread-safe name to value bindings
//   - Provider: contributes bindings; registered once per name
//   - Resolve: typed lookup
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(httpProvider)
//	exec, err := service.Resolve[*requests.Executor](registry, "http")
package service
