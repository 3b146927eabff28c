// Package webapp is a small gin-based application framework whose lifecycle
// can be driven either by its own HTTP server or by a task worker.
//
// An App owns startup and shutdown hooks, a registry of components acquired
// through its Lifespan, and a gin engine. Handlers and task code see the same
// request-like types: a Request built from a Scope that carries the App and
// the lifespan state. In worker processes the scope is synthetic.
//
//	app, _ := webapp.NewApp(&cfg)
//	app.RegisterComponent(pool)
//	app.Engine().GET("/orders", func(c *gin.Context) {
//	    req, _ := webapp.RequestFrom(c)
//	    db := req.State()["db"]
//	    ...
//	})
package webapp
