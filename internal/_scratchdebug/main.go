package main

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/engine"
	"github.com/s00inx/webserv/internal/netutil"
	"github.com/s00inx/webserv/internal/router"
	"sync/atomic"
)

func main() {
	fd, err := netutil.Listen("127.0.0.1", 19202)
	if err != nil {
		panic(err)
	}
	sc := &config.ServerConfig{
		MaxBodySize: config.DefaultMaxBodySize,
		Host: "127.0.0.1", Port: 19202,
		Locations: []*config.Location{
			{Path: "/", Methods: []string{"GET"}, Root: "../engine/testdata/www", IndexFiles: []string{"index.html"}},
		},
	}
	loop, err := engine.New(router.New(nil), nil)
	if err != nil { panic(err) }
	if err := loop.AddListener(fd, sc); err != nil { panic(err) }
	var stop atomic.Bool
	done := make(chan error, 1)
	go func() { done <- loop.Run(stop.Load) }()
	time.Sleep(200 * time.Millisecond)

	conn, err := net.Dial("tcp", "127.0.0.1:19202")
	if err != nil { panic(err) }
	conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	fmt.Printf("err=%v\n", err)
	if resp != nil {
		fmt.Printf("status=%d header=%v\n", resp.StatusCode, resp.Header)
	}
	stop.Store(true)
	<-done
}
