package server

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"testing"

	"go.uber.org/goleak"
)

const helperEnv = "TESTRIG_SERVER_HELPER"

func TestMain(m *testing.M) {
	// Re-executed test binary standing in for the live and proxy servers
	if os.Getenv(helperEnv) == "1" {
		runHelper(os.Args[len(os.Args)-1])
		return
	}
	goleak.VerifyTestMain(m)
}

func runHelper(mode string) {
	fmt.Printf("helper starting in %s mode\n", mode)

	if mode == "listen" {
		ln, err := net.Listen("tcp", "127.0.0.1:"+os.Getenv("PORT"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		defer ln.Close()
		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				conn.Close()
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, os.Interrupt)
	<-sigs
	fmt.Println("helper stopping")
}
