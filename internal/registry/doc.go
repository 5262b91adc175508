// Package registry holds modules whose callables are compiled Go functions.
//
// A native module is the Go counterpart of a script module: it is addressed
// by a module identifier, lists its members and invokes them with positional
// arguments. Modules register their functions at startup through the Module
// interface; ValidateRegistry then checks that every registered function has
// a shape the reflective invoker can bind, so mismatches surface before the
// first call instead of during one.
//
// The Registry implements loader.Backend, which lets native modules and
// interpreted ones sit behind the same namespace and dispatch code.
package registry
