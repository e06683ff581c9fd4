package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/cydantic/theme"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// HelpExtrasFunc writes sections that only one command has, such as the
// SCHEMA MODULES list of `cydantic generate`.
type HelpExtrasFunc func(w io.Writer, t *theme.Theme)

var (
	helpExtras   = make(map[*cobra.Command]HelpExtrasFunc)
	helpExtrasMu sync.RWMutex
)

const maxWidth = 60
const minWidth = 40

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < minWidth {
		return maxWidth
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}

// wrapText breaks each line of text at word boundaries so none exceeds
// width. Explicit newlines are kept.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = maxWidth
	}

	var result []string
	for _, paragraph := range strings.Split(text, "\n") {
		if len(paragraph) <= width {
			result = append(result, paragraph)
			continue
		}

		var line string
		for _, word := range strings.Fields(paragraph) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				result = append(result, line)
				line = word
			}
		}
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// SetStyledHelp replaces cobra's help template on cmd.
func SetStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
}

// ApplyStyledHelpRecursive installs the help renderer on cmd and every
// subcommand, and silences cobra's usage dump. Run it once the command tree
// is complete.
func ApplyStyledHelpRecursive(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
	cmd.SetUsageFunc(func(*cobra.Command) error { return nil })
	for _, sub := range cmd.Commands() {
		ApplyStyledHelpRecursive(sub)
	}
}

// SetStyledHelpWithExtras registers extras to be written after the
// EXAMPLES section of cmd's help.
func SetStyledHelpWithExtras(cmd *cobra.Command, extras HelpExtrasFunc) {
	helpExtrasMu.Lock()
	helpExtras[cmd] = extras
	helpExtrasMu.Unlock()
	cmd.SetHelpFunc(styledHelpFunc)
}

// splitExamples separates an "Examples:" block at the end of a Long text.
func splitExamples(long string) (description, examples string) {
	for _, marker := range []string{"\nExamples:\n", "\nExample:\n"} {
		if idx := strings.Index(long, marker); idx != -1 {
			return strings.TrimSpace(long[:idx]), strings.TrimSpace(long[idx+len(marker):])
		}
	}
	return long, ""
}

// helpWriter renders one command's help page. Sections are written in
// order: title, USAGE, COMMANDS, FLAGS, global flags, EXAMPLES, extras.
type helpWriter struct {
	w       io.Writer
	t       *theme.Theme
	width   int
	section lipgloss.Style
	flag    lipgloss.Style
}

func styledHelpFunc(cmd *cobra.Command, _ []string) {
	t := theme.DefaultTheme
	h := &helpWriter{
		w:       cmd.OutOrStdout(),
		t:       t,
		width:   getTerminalWidth() - 2,
		section: lipgloss.NewStyle().Italic(true).Foreground(t.Colors.Orange),
		flag:    lipgloss.NewStyle().Foreground(t.Colors.Violet),
	}

	examples := h.header(cmd)
	h.usage(cmd)
	h.commands(cmd)
	h.flags(cmd)
	h.globalFlags(cmd)

	if cmd.Example != "" {
		examples = cmd.Example
	}
	if examples != "" {
		h.heading("EXAMPLES")
		h.examples(examples, strings.Fields(cmd.CommandPath())[0])
	}

	helpExtrasMu.RLock()
	extras := helpExtras[cmd]
	helpExtrasMu.RUnlock()
	if extras != nil {
		extras(h.w, t)
	}

	if cmd.HasSubCommands() {
		fmt.Fprintf(h.w, "\n Use \"%s [command] --help\" for more information.\n", cmd.CommandPath())
	}
}

func (h *helpWriter) heading(name string) {
	fmt.Fprintln(h.w, "\n "+h.section.Render(name))
}

func (h *helpWriter) lines(text string, style func(...string) string) {
	for _, line := range strings.Split(wrapText(text, h.width), "\n") {
		fmt.Fprintln(h.w, " "+style(line))
	}
}

// header writes the upper-cased command path with the short and long
// descriptions, and returns any examples split off the long one.
func (h *helpWriter) header(cmd *cobra.Command) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(h.t.Colors.Orange)
	fmt.Fprintln(h.w, " "+title.Render(strings.ToUpper(cmd.CommandPath())))

	description, examples := cmd.Short, ""
	if cmd.Long != "" {
		description, examples = splitExamples(cmd.Long)
	}
	if cmd.Short != "" {
		h.lines(cmd.Short, h.t.Italic.Render)
	}
	if description != "" && description != cmd.Short {
		fmt.Fprintln(h.w)
		h.lines(description, lipgloss.NewStyle().Render)
	}
	return examples
}

func (h *helpWriter) usage(cmd *cobra.Command) {
	if !cmd.Runnable() && !cmd.HasSubCommands() {
		return
	}
	h.heading("USAGE")
	if cmd.Runnable() {
		fmt.Fprintf(h.w, " %s\n", cmd.UseLine())
	}
	if cmd.HasSubCommands() {
		fmt.Fprintf(h.w, " %s [command]\n", cmd.CommandPath())
	}
}

func (h *helpWriter) commands(cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}
	name := lipgloss.NewStyle().Bold(true).Foreground(h.t.Colors.Blue)
	width := 0
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() && len(sub.Name()) > width {
			width = len(sub.Name())
		}
	}

	h.heading("COMMANDS")
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			fmt.Fprintf(h.w, " %s%s  %s\n", name.Render(sub.Name()),
				strings.Repeat(" ", width-len(sub.Name())), sub.Short)
		}
	}
}

// flags lists the command's own flags. The root command gets a one-line
// summary; leaf commands get a FLAGS table where choice flags show their
// accepted tokens as bullets under the description.
func (h *helpWriter) flags(cmd *cobra.Command) {
	var visible []*pflag.Flag
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			visible = append(visible, f)
		}
	})
	if len(visible) == 0 {
		return
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(h.w, "\n "+h.t.Muted.Render("Flags: "+inlineFlags(visible)))
		return
	}

	h.heading("FLAGS")
	width := 0
	for _, f := range visible {
		if n := len(formatFlagName(f)); n > width {
			width = n
		}
	}
	for _, f := range visible {
		name := formatFlagName(f)
		usage, choices := flagChoices(f)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" {
			usage += h.t.Muted.Render(fmt.Sprintf(" (default: %s)", f.DefValue))
		}
		fmt.Fprintf(h.w, " %s%s  %s\n", h.flag.Render(name), strings.Repeat(" ", width-len(name)), usage)
		for _, choice := range choices {
			fmt.Fprintf(h.w, " %s%s\n", strings.Repeat(" ", width+2), h.t.Muted.Render("• "+choice))
		}
	}
}

// globalFlags writes the persistent flags every cydantic command accepts,
// minus --help.
func (h *helpWriter) globalFlags(cmd *cobra.Command) {
	var inherited []*pflag.Flag
	cmd.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden && f.Name != "help" {
			inherited = append(inherited, f)
		}
	})
	if len(inherited) > 0 {
		fmt.Fprintln(h.w, "\n "+h.t.Muted.Render("Global flags: "+inlineFlags(inherited)))
	}
}

// examples writes example lines: "#" lines are muted comments, and in
// command lines the program name, subcommand and flags are colored.
func (h *helpWriter) examples(text, program string) {
	prog := lipgloss.NewStyle().Foreground(h.t.Colors.Cyan)
	sub := lipgloss.NewStyle().Foreground(h.t.Colors.Blue)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			fmt.Fprintln(h.w)
		case strings.HasPrefix(line, "#"):
			fmt.Fprintln(h.w, " "+h.t.Muted.Render(line))
		default:
			parts := strings.Fields(line)
			for i, part := range parts {
				switch {
				case i == 0 && part == program:
					parts[i] = prog.Render(part)
				case strings.HasPrefix(part, "-"):
					parts[i] = h.flag.Render(part)
				case i == 1:
					parts[i] = sub.Render(part)
				}
			}
			fmt.Fprintln(h.w, "   "+strings.Join(parts, " "))
		}
	}
}

// inlineFlags renders flags as "-v/--verbose, --config".
func inlineFlags(flags []*pflag.Flag) string {
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.Shorthand != "" {
			names = append(names, fmt.Sprintf("-%s/--%s", f.Shorthand, f.Name))
		} else {
			names = append(names, "--"+f.Name)
		}
	}
	return strings.Join(names, ", ")
}

// formatFlagName returns "-f, --format", or "    --force" when the flag
// has no shorthand so long names line up.
func formatFlagName(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	}
	return "    --" + f.Name
}

// flagChoices returns the description of a flag defined with ChoiceVarP,
// without the trailing token list, and the tokens it accepts. Other flags
// come back unchanged with no choices.
func flagChoices(f *pflag.Flag) (usage string, choices []string) {
	cv, ok := f.Value.(*ChoiceValue)
	if !ok {
		return f.Usage, nil
	}
	usage = f.Usage
	if idx := strings.LastIndex(usage, ": "); idx != -1 {
		usage = usage[:idx+1]
	}
	return usage, cv.Choices()
}
