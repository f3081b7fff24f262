package transport

// ListenPipe starts a named pipe listener. Outside Windows named pipes are
// Unix domain sockets, which is what vscode-languageclient creates for its
// "pipe" transport kind.
func ListenPipe(name string) (Transport, error) {
	return ListenSocket(name)
}

// DialPipe connects to an existing named pipe / Unix domain socket.
func DialPipe(name string) (Transport, error) {
	return DialSocket(name)
}
