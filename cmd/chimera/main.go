// Command chimera is the desktop client: a canvas of creature cards backed
// by a chimerad server.
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"chimera"
)

func main() {
	server := flag.String("server", "http://localhost:5001", "chimerad base URL")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 800, "window height")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	client := chimera.NewClient(*server)
	session := chimera.NewSession(client, client, client, logger)
	session.Start()

	if err := chimera.Run(session, chimera.RunConfig{
		Title:     "Chimera",
		Width:     *width,
		Height:    *height,
		ImageBase: client.Base(),
	}); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}
