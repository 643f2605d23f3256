// cmd/shannon drives the core runtime end to end: it reads a source file
// through internal/charfifo, assembles it (internal/asm — see that
// package's doc comment for why assembly rather than a Shannon-language
// parser, which is out of scope), builds the process-wide system module,
// and executes the result on the C7 VM, reporting the outcome the way
// spec.md section 6 describes.
//
// Grounded on the teacher's cmd/sentra/main.go `run` command (read file,
// scan, parse, compile, execute, map a recovered *errors.SentraError to a
// one-line stderr diagnostic and process exit code) trimmed to this
// runtime's narrower external-interface contract.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"

	"sentra/internal/asm"
	"sentra/internal/bytecode"
	"sentra/internal/charfifo"
	"sentra/internal/codegen"
	"sentra/internal/rterr"
	"sentra/internal/rtstack"
	"sentra/internal/rtstate"
	"sentra/internal/rtvalue"
	"sentra/internal/rtypes"
	"sentra/internal/sysmodule"
	"sentra/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("shannon", flag.ContinueOnError)
	enableAssert := fs.Bool("assert", true, "enableAssert: assert statements emit code")
	enableDump := fs.Bool("dump", true, "enableDump: dump statements emit code")
	lineNumbers := fs.Bool("lines", false, "lineNumbers: emit LineNum opcodes before each statement")
	vmListing := fs.Bool("listing", false, "vmListing: print a disassembly of the compiled module")
	stackSize := fs.Int("stack-size", 4096, "stackSize: operand-stack reservation in variant slots")
	modulePath := fs.String("module-path", "", "modulePath: colon-separated search list for uses imports")
	verbose := fs.Bool("v", false, "print the full error struct on an uncaught failure")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: shannon [flags] <source-file>")
		return 2
	}

	opts := codegen.Options{
		EnableAssert: *enableAssert,
		EnableDump:   *enableDump,
		LineNumbers:  *lineNumbers,
		VMListing:    *vmListing,
		StackSize:    *stackSize,
	}
	if *modulePath != "" {
		opts.ModulePath = strings.Split(*modulePath, ":")
	}

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		diagnose(err, path, *verbose)
		return 1
	}
	defer f.Close()

	chunk, err := asm.Assemble(charfifo.Open(f))
	if err != nil {
		diagnose(err, path, *verbose)
		return 1
	}

	sys, err := sysmodule.New("system", os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		diagnose(err, path, *verbose)
		return 1
	}

	machine := vm.New(sys, opts.StackSize)
	machine.EnableAssert = opts.EnableAssert
	machine.EnableDump = opts.EnableDump

	if opts.VMListing {
		bytecode.Disassemble(chunk, os.Stdout, path+" ["+machine.RunID.String()+"]")
		fmt.Fprintf(os.Stdout, "; operand stack reserved: %s\n",
			humanize.Bytes(uint64(opts.StackSize)*uint64(unsafe.Sizeof(rtvalue.Variant{}))))
	}

	modState := rtypes.NewModuleState(path)
	for i := 0; i < selfVarCount(chunk); i++ {
		if _, err := modState.AddInnerVar(fmt.Sprintf("$%d", i), nil); err != nil {
			diagnose(err, path, *verbose)
			return 1
		}
	}
	self := rtstate.NewInstance(modState)

	frame := rtstack.Frame{Base: 0, Args: 0}
	machine.Stack.Push(rtvalue.Void())
	if _, err := machine.Run(chunk, self, frame); err != nil {
		if exitErr, ok := err.(*rterr.Error); ok && exitErr.Kind == rterr.Exit {
			return exitErr.ExitCode
		}
		diagnose(err, path, *verbose)
		return 1
	}
	return 0
}

// selfVarCount scans an assembled chunk for the self-var slot count a
// top-level module instance needs. internal/asm has no declaration pass
// that would populate a rtypes.State's InnerVars the way codegen does
// (asm's doc comment: textual opcodes only, no parser) so the driver
// recovers the count the same way bytecode.Disassemble recovers operand
// values: walking Code with Layout, one instruction at a time, and
// tracking the highest byte operand any self-var opcode names.
func selfVarCount(c *bytecode.Chunk) int {
	n := 0
	for ip := 0; ip < len(c.Code); {
		op, next := c.InstructionAt(ip)
		switch op {
		case bytecode.OpLoadSelfVar, bytecode.OpStoreSelfVar, bytecode.OpInitSelfVar, bytecode.OpLeaSelfVar:
			if idx := int(c.Code[ip+1]); idx+1 > n {
				n = idx + 1
			}
		}
		ip = next
	}
	return n
}

func diagnose(err error, path string, verbose bool) {
	ts := strftime.Format("%Y-%m-%d %H:%M:%S", time.Now())
	msg := fmt.Sprintf("[%s] %s: %v", ts, path, err)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
	if e, ok := err.(*rterr.Error); ok && e.Cause != nil {
		fmt.Fprintf(os.Stderr, "  caused by: %+v\n", e.Cause)
	}
	if verbose {
		if e, ok := err.(*rterr.Error); ok {
			fmt.Fprintf(os.Stderr, "%# v\n", pretty.Formatter(e))
		}
	}
}
