// Package guest hosts the Fibonacci dispatch routine inside a WebAssembly
// module, the way an embedding runtime executes it.
//
// The module is assembled by hand and exports exactly two functions:
//
//	fib          (i64 a, i64 b, i64 count) -> i64
//	fib_dispatch (i64 index) -> i64
//
// There is deliberately no "main" export: embedders can only reach
// fib_dispatch (and its helper), never a native harness entry point.
package guest

// Export names of the guest module.
const (
	ExportStep     = "fib"
	ExportDispatch = "fib_dispatch"
)

// wasmModule is the binary encoding (version 1) of the guest module.
//
// fib is a loop over the locals (a, b, count) with one scratch local:
//
//	loop
//	  if count == 0 { return b }
//	  tmp = a + b; a = b; b = tmp; count = count - 1
//	  br 0
//	end
//	unreachable
//
// fib_dispatch returns index when index < 2 and calls fib(0, 1, index-1)
// otherwise.
var wasmModule = []byte{
	// Preamble: "\0asm", version 1.
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,

	// Type section: 2 signatures.
	0x01, 0x0d, 0x02,
	0x60, 0x03, 0x7e, 0x7e, 0x7e, 0x01, 0x7e, // type 0: (i64 i64 i64) -> i64
	0x60, 0x01, 0x7e, 0x01, 0x7e, // type 1: (i64) -> i64

	// Function section: func 0 has type 0, func 1 has type 1.
	0x03, 0x03, 0x02, 0x00, 0x01,

	// Export section.
	0x07, 0x16, 0x02,
	0x03, 'f', 'i', 'b', 0x00, 0x00,
	0x0c, 'f', 'i', 'b', '_', 'd', 'i', 's', 'p', 'a', 't', 'c', 'h', 0x00, 0x01,

	// Code section: 2 bodies.
	0x0a, 0x44, 0x02,

	// func 0: fib
	0x29,
	0x01, 0x01, 0x7e, // one extra i64 local (tmp, index 3)
	0x03, 0x40, // loop
	0x20, 0x02, // local.get count
	0x50,       // i64.eqz
	0x04, 0x40, // if
	0x20, 0x01, // local.get b
	0x0f, // return
	0x0b, // end if
	0x20, 0x00, 0x20, 0x01, 0x7c, 0x21, 0x03, // tmp = a + b
	0x20, 0x01, 0x21, 0x00, // a = b
	0x20, 0x03, 0x21, 0x01, // b = tmp
	0x20, 0x02, 0x42, 0x01, 0x7d, 0x21, 0x02, // count = count - 1
	0x0c, 0x00, // br 0
	0x0b, // end loop
	0x00, // unreachable
	0x0b, // end func

	// func 1: fib_dispatch
	0x18,
	0x00,       // no extra locals
	0x20, 0x00, // local.get index
	0x42, 0x02, // i64.const 2
	0x54,       // i64.lt_u
	0x04, 0x40, // if
	0x20, 0x00, // local.get index
	0x0f, // return
	0x0b, // end if
	0x42, 0x00, // i64.const 0
	0x42, 0x01, // i64.const 1
	0x20, 0x00, 0x42, 0x01, 0x7d, // index - 1
	0x10, 0x00, // call fib
	0x0b, // end func
}

// Binary returns a copy of the guest module's binary encoding.
func Binary() []byte {
	out := make([]byte, len(wasmModule))
	copy(out, wasmModule)
	return out
}
