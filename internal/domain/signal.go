package domain

import (
	"strconv"
	"strings"
	"syscall"
)

// signalsByName mirrors the source's signal_names map: the small set of
// signals a job manifest or admin client can reasonably target.
var signalsByName = map[string]int{
	"SIGHUP":  int(syscall.SIGHUP),
	"SIGINT":  int(syscall.SIGINT),
	"SIGQUIT": int(syscall.SIGQUIT),
	"SIGKILL": int(syscall.SIGKILL),
	"SIGUSR1": int(syscall.SIGUSR1),
	"SIGUSR2": int(syscall.SIGUSR2),
	"SIGTERM": int(syscall.SIGTERM),
	"SIGCONT": int(syscall.SIGCONT),
	"SIGSTOP": int(syscall.SIGSTOP),
	"SIGWINCH": int(syscall.SIGWINCH),
}

// ResolveSignal resolves a signal given as either a bare number ("9"), a
// name ("SIGKILL"), or a name without the SIG prefix ("KILL") to its
// numeric value. Returns ErrUnknownSignal if s matches none of the above.
func ResolveSignal(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if n, ok := signalsByName[name]; ok {
		return n, nil
	}
	return 0, ErrUnknownSignal
}
