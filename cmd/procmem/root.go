package main

import (
	"fmt"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"procmem/process"
)

var log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "procmem"))

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "procmem",
	Short: "Inspect and modify the memory of another process",
	Long: `procmem opens a process by window title or image name, walks a pointer
chain from a module base and reads or writes typed values at the result.

  procmem read --window "AdCap!" --module mono-2.0-bdwgc.dll \
      --static 0x39B56C --offsets 0x6DC,0x110,0x64,0x28,0x1C --bits 32 --type u32`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("window", "w", "", "exact title of a window owned by the target")
	flags.StringP("image", "i", "", "executable file name of the target, e.g. game.exe")
	flags.StringP("module", "m", "", "module whose base the static offset is relative to (absolute when empty)")
	flags.StringP("static", "s", "0", "static offset from the module base")
	flags.StringP("offsets", "o", "", "comma separated pointer chain offsets, last one is not dereferenced")
	flags.IntP("bits", "b", 64, "pointer width of the target, 32 or 64")
	flags.BoolP("verbose", "v", false, "log every dereference")
}

// target is an opened process plus the base the chain starts from.
type target struct {
	proc    process.Process
	loc     process.Locator
	base    process.ProcessMemoryAddress
	verbose bool
}

func openTarget(cmd *cobra.Command) (*target, error) {
	flags := cmd.Flags()
	window, _ := flags.GetString("window")
	image, _ := flags.GetString("image")
	module, _ := flags.GetString("module")
	bits, _ := flags.GetInt("bits")
	verbose, _ := flags.GetBool("verbose")

	size, err := process.PointerSizeFromBits(bits)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	loc := newLocator()

	var proc process.Process
	switch {
	case window != "" && image != "":
		return nil, errors.New("--window and --image are mutually exclusive")
	case window != "":
		proc, err = process.OpenByWindow(loc, window, size)
	case image != "":
		proc, err = process.OpenByImageName(loc, image, size)
	default:
		return nil, errors.New("one of --window or --image is required")
	}
	if err != nil {
		return nil, err
	}

	t := &target{proc: proc, loc: loc, verbose: verbose}

	if module != "" {
		t.base, err = loc.ModuleBase(proc.GetPID(), module)
		if err != nil {
			proc.Close()
			return nil, err
		}
		if verbose {
			log.Debugln("Module", module, "base", t.base.ToString())
		}
	}

	return t, nil
}

// address resolves the target address from --static and --offsets. Without
// offsets the address is base+static with no dereference. present is false
// when the chain walked through a null pointer.
func (t *target) address(cmd *cobra.Command) (addr process.ProcessMemoryAddress, present bool, err error) {
	staticFlag, _ := cmd.Flags().GetString("static")
	offsetsFlag, _ := cmd.Flags().GetString("offsets")

	static, err := parseOffset(staticFlag)
	if err != nil {
		return 0, false, errors.Wrap(err, "--static")
	}
	offsets, err := parseOffsets(offsetsFlag)
	if err != nil {
		return 0, false, errors.Wrap(err, "--offsets")
	}

	if len(offsets) == 0 {
		return t.base.Add(static, t.proc.PointerSize()), true, nil
	}

	res, err := process.Resolve(t.proc, t.base, static, offsets)
	if t.verbose {
		for _, hop := range res.Hops {
			log.Debugln(hop.String())
		}
	}
	if err != nil {
		return 0, false, err
	}
	if res.Null {
		log.Warn(fmt.Sprintf("chain %s hit a null pointer at step %d", offsets.String(), res.NullStep))
		return 0, false, nil
	}

	return res.Address, true, nil
}

func (t *target) Close() {
	if err := t.proc.Close(); err != nil {
		log.Warn("close: ", err)
	}
}
