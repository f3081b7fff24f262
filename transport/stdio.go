package transport

import "os"

// Stdio returns a Transport reading os.Stdin and writing os.Stdout, the
// usual arrangement when this process is itself the language server or a
// relay spawned by an editor.
func Stdio() Transport {
	return Pipes(os.Stdin, os.Stdout)
}
