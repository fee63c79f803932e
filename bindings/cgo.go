package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"
)

//export memdb_open_memory
func memdb_open_memory(journaled C.int) C.int {
	handle, err := openHandle(journaled != 0)
	if err != nil {
		return -1
	}
	return C.int(handle)
}

//export memdb_close
func memdb_close(handle C.int) {
	closeHandle(int(handle))
}

// memdb_execute returns a JSON response the caller releases with
// memdb_free.
//
//export memdb_execute
func memdb_execute(handle C.int, query *C.char) *C.char {
	return C.CString(string(execute(int(handle), C.GoString(query))))
}

// memdb_render returns the pipe-separated rendering of a table, or NULL.
//
//export memdb_render
func memdb_render(handle C.int, table *C.char) *C.char {
	rendered, err := render(int(handle), C.GoString(table))
	if err != nil {
		return nil
	}
	return C.CString(rendered)
}

//export memdb_free
func memdb_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func main() {}
