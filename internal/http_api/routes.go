package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	v1 := s.router.Group("/api/v1")

	v1.POST("/jars", s.register)
	v1.GET("/jars/:handle", s.getJar)
	v1.DELETE("/jars/:handle", s.deregister)
	v1.GET("/availability", s.availability)
	v1.GET("/handles", s.handles)
	v1.GET("/stats", s.stats)

	v1.POST("/tips", s.sendTip)
	v1.GET("/jars/:handle/tips", s.tips)

	v1.GET("/jars/:handle/links", s.links)
	v1.POST("/jars/:handle/links", s.addLink)
	v1.DELETE("/jars/:handle/links/:key", s.removeLink)

	v1.GET("/escrow", s.escrowBalance)
	v1.POST("/escrow/withdraw", s.withdrawEscrow)

	admin := v1.Group("/admin", s.adminMiddleware())
	admin.POST("/pause", s.pause)
	admin.POST("/unpause", s.unpause)
	admin.POST("/fee_recipient", s.setFeeRecipient)
	admin.POST("/deregister", s.adminDeregister)
	admin.POST("/authority/transfer", s.transferAuthority)
	admin.POST("/authority/accept", s.acceptAuthority)
	admin.POST("/emergency/initiate", s.initiateEmergency)
	admin.POST("/emergency/execute", s.executeEmergency)
	admin.POST("/emergency/cancel", s.cancelEmergency)
}
