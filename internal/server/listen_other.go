//go:build !unix

package server

import "syscall"

func control(network, address string, conn syscall.RawConn) error {
	return nil
}
