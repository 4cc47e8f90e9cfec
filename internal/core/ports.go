package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// KillPort force-kills every process listening on or connected to port.
// It returns the PIDs it signalled. Cleanup is best effort: the error is
// meant for logging, and a port with no owner is not an error.
func KillPort(ctx context.Context, r Runner, env []string, port int) ([]int, error) {
	if port <= 0 {
		return nil, nil
	}
	if runtime.GOOS == "windows" {
		return killPortWindows(ctx, r, env, port)
	}
	return killPortUnix(ctx, r, env, port)
}

func killPortUnix(ctx context.Context, r Runner, env []string, port int) ([]int, error) {
	out, err := r.Run(ctx, env, "", "lsof", "-ti", ":"+strconv.Itoa(port))
	pids := parseLsofPIDs(out)
	if err != nil && len(pids) == 0 {
		// lsof exits non-zero when nothing matches.
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.TrimSpace(cmdErr.Output) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("listing port %d owners: %w", port, err)
	}

	var killed []int
	var errs []error
	for _, pid := range pids {
		if err := signalKill(pid); err != nil {
			errs = append(errs, fmt.Errorf("killing pid %d: %w", pid, err))
			continue
		}
		killed = append(killed, pid)
	}
	return killed, errors.Join(errs...)
}

func killPortWindows(ctx context.Context, r Runner, env []string, port int) ([]int, error) {
	out, err := r.Run(ctx, env, "", "netstat", "-ano")
	if err != nil {
		return nil, fmt.Errorf("listing port %d owners: %w", port, err)
	}

	var killed []int
	var errs []error
	for _, pid := range parseNetstatPIDs(out, port) {
		if _, err := r.Run(ctx, env, "", "taskkill", "/PID", strconv.Itoa(pid), "/F"); err != nil {
			errs = append(errs, fmt.Errorf("killing pid %d: %w", pid, err))
			continue
		}
		killed = append(killed, pid)
	}
	return killed, errors.Join(errs...)
}

// parseLsofPIDs parses `lsof -t` output: one PID per line.
func parseLsofPIDs(out string) []int {
	self := os.Getpid()
	seen := make(map[int]bool)
	var pids []int

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		pid, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || pid <= 0 || pid == self || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}

// parseNetstatPIDs returns the owning PIDs of `netstat -ano` rows whose
// local address ends in :port.
func parseNetstatPIDs(out string, port int) []int {
	suffix := ":" + strconv.Itoa(port)
	self := os.Getpid()
	seen := make(map[int]bool)
	var pids []int

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || !strings.HasSuffix(fields[1], suffix) {
			continue
		}
		pid, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || pid <= 0 || pid == self || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}
