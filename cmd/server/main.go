package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nickyhof/MemDB"
	"github.com/nickyhof/MemDB/core"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	port := flag.Int("port", 3306, "TCP port to listen on")
	journaled := flag.Bool("journal", true, "Record every change in the in-memory journal")
	jwtSecret := flag.String("jwtSecret", "", "Shared HMAC secret; when set, clients must AUTH JWT <token>")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected JWT issuer (optional)")
	jwtAudience := flag.String("jwtAudience", "", "Expected JWT audience (optional)")
	tlsCert := flag.String("tlsCert", "", "TLS certificate file (enables TLS with -tlsKey)")
	tlsKey := flag.String("tlsKey", "", "TLS private key file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("MemDB SQL Server v%s\n", Version)
		return
	}

	instance, err := MemDB.OpenMemory(*journaled)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	if *journaled {
		log.Println("Journal enabled")
	}

	var server *Server
	if *jwtSecret != "" {
		log.Println("JWT authentication enabled")
		server = NewServerWithAuth(instance, &AuthConfig{
			Enabled:   true,
			JWTSecret: *jwtSecret,
			Issuer:    *jwtIssuer,
			Audience:  *jwtAudience,
		})
	} else {
		server = NewServer(instance, core.Identity{
			Name:  "MemDB Server",
			Email: "server@memdb.local",
		})
	}

	addr := fmt.Sprintf(":%d", *port)
	if *tlsCert != "" && *tlsKey != "" {
		err = server.StartTLS(addr, *tlsCert, *tlsKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   MemDB SQL Server v%-17s ║\n", Version)
	fmt.Println("║   In-memory SQL table store           ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d\n", *port)
	fmt.Println("Send SQL queries (one per line), 'quit' to disconnect")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
