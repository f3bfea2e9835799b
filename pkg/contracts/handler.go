package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts its routes on a router owned by the application.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
