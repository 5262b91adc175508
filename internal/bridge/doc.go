// Package bridge connects a namespace registry to a host process over
// socket.io. The host sends "describe" to learn the exported namespaces and
// "invoke" to call one entry; every answer is emitted back as a
// "<event>:result" event. Events are handled one at a time, in arrival
// order.
package bridge
