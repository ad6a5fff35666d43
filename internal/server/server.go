// Package server is the HTTP facade: it joins the servers that handle one
// concern each.
package server

type Server struct {
	AnalysisServer
	AuthServer
	TradingServer
	ProxyServer
}

func NewServer(
	analysisServer AnalysisServer,
	authServer AuthServer,
	tradingServer TradingServer,
	proxyServer ProxyServer,
) Server {
	return Server{
		AnalysisServer: analysisServer,
		AuthServer:     authServer,
		TradingServer:  tradingServer,
		ProxyServer:    proxyServer,
	}
}
