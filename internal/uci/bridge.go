// Package uci talks to the external evaluation engine. Each Evaluate call
// is a single-shot exchange: spawn the binary, set the position, run a
// fixed-depth search, read everything it said, and terminate it. The score
// is advisory — move legality never depends on this package answering.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const handshakeTimeout = 4 * time.Second

// mateScore is the sentinel centipawn value reported for forced mates.
const mateScore = 30000

// EvalResult is one engine verdict for a position.
type EvalResult struct {
	ScoreCP  int
	MateIn   int
	BestMove string
	Depth    int
}

// Bridge runs evaluations against a UCI engine binary.
type Bridge struct {
	binaryPath string
	depth      int
	timeout    time.Duration
}

func NewBridge(binaryPath string, depth int, timeout time.Duration) (*Bridge, error) {
	if strings.TrimSpace(binaryPath) == "" {
		return nil, fmt.Errorf("engine binary path is required")
	}
	if depth <= 0 {
		depth = 12
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Bridge{binaryPath: binaryPath, depth: depth, timeout: timeout}, nil
}

// Evaluate scores fen from White's point of view. The subprocess is always
// terminated before returning, success or not.
func (b *Bridge) Evaluate(ctx context.Context, fen string) (EvalResult, error) {
	if strings.TrimSpace(fen) == "" {
		return EvalResult{}, fmt.Errorf("empty position string")
	}

	runCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	proc, err := startEngine(runCtx, b.binaryPath)
	if err != nil {
		return EvalResult{}, err
	}
	defer proc.stop()

	if err := proc.handshake(runCtx); err != nil {
		return EvalResult{}, err
	}

	if err := proc.send("position fen " + fen + "\n"); err != nil {
		return EvalResult{}, fmt.Errorf("send position: %w", err)
	}
	if err := proc.send(fmt.Sprintf("go depth %d\n", b.depth)); err != nil {
		return EvalResult{}, fmt.Errorf("send go: %w", err)
	}

	var result EvalResult
	for {
		line, err := proc.readLine(runCtx)
		if err != nil {
			return EvalResult{}, fmt.Errorf("read engine output: %w", err)
		}
		switch {
		case strings.HasPrefix(line, "info "):
			parseInfo(line, &result)
		case strings.HasPrefix(line, "bestmove"):
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				result.BestMove = parts[1]
			}
			// Scores arrive relative to the side to move; normalize to
			// White's point of view.
			if sideToMove(fen) == "b" {
				result.ScoreCP = -result.ScoreCP
				result.MateIn = -result.MateIn
			}
			return result, nil
		}
	}
}

func sideToMove(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) >= 2 {
		return fields[1]
	}
	return "w"
}

// parseInfo folds one "info ..." line into result, keeping the deepest
// verdict seen.
func parseInfo(line string, result *EvalResult) {
	parts := strings.Fields(line)
	depth := 0
	scoreCP := 0
	mateIn := 0
	scoreSet := false
	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "depth":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					depth = v
				}
				i++
			}
		case "score":
			if i+2 < len(parts) {
				val, err := strconv.Atoi(parts[i+2])
				if err == nil {
					switch parts[i+1] {
					case "cp":
						scoreCP = val
						scoreSet = true
					case "mate":
						mateIn = val
						if val >= 0 {
							scoreCP = mateScore
						} else {
							scoreCP = -mateScore
						}
						scoreSet = true
					}
				}
				i += 2
			}
		}
	}
	if scoreSet && depth >= result.Depth {
		result.Depth = depth
		result.ScoreCP = scoreCP
		result.MateIn = mateIn
	}
}

// engineProc wraps the running subprocess and its pipes.
type engineProc struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	mu     sync.Mutex
}

func startEngine(ctx context.Context, binaryPath string) (*engineProc, error) {
	cmd := exec.CommandContext(ctx, binaryPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return nil, fmt.Errorf("start engine: %w", err)
	}
	return &engineProc{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdoutPipe)}, nil
}

func (p *engineProc) handshake(ctx context.Context) error {
	hsCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	if err := p.send("uci\n"); err != nil {
		return fmt.Errorf("send uci: %w", err)
	}
	if err := p.awaitToken(hsCtx, "uciok"); err != nil {
		return fmt.Errorf("wait uciok: %w", err)
	}
	if err := p.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := p.awaitToken(hsCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

func (p *engineProc) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin != nil {
		_, _ = io.WriteString(p.stdin, "quit\n")
		p.stdin.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	if p.cmd != nil {
		_ = p.cmd.Wait()
	}
}

func (p *engineProc) send(msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.stdin, msg)
	return err
}

func (p *engineProc) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := p.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

func (p *engineProc) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.stdout.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
