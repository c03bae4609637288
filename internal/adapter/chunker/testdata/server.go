package main

import (
	"fmt"
	str "strings"
	"sync"
)

// Server runs jobs.
type Server struct {
	mu   sync.Mutex
	wg   sync.WaitGroup
	jobs chan int
}

type Handler interface {
	Handle(x int) error
}

// Run starts a worker.
func (s *Server) Run() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.mu.Lock()
		s.jobs <- 1
		s.mu.Unlock()
	}()
	s.wg.Wait()
}

func helper[T any](v T) T {
	return v
}

type (
	ID    string
	Point struct {
		X, Y int
	}
)

func main() {
	fmt.Println(str.ToUpper("x"))
}
