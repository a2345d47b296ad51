package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pior/ftp/command"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var maxLine int

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a captured control stream",
		Long: `Decode a client-to-server control stream read from file or stdin and
print one decoded command per line. Malformed lines are printed as
"! <error>" and decoding continues, except after a line that exceeds
--max-line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return decodeStream(in, cmd.OutOrStdout(), maxLine)
		},
	}

	cmd.Flags().IntVar(&maxLine, "max-line", command.MaxLineSize, "maximum command line size in bytes")
	return cmd
}

func decodeStream(in io.Reader, out io.Writer, maxLine int) error {
	w := bufio.NewWriter(out)
	r := command.NewReader(in, command.NewBuffer(maxLine))

	for {
		cmd, err := r.ReadCommand()
		switch {
		case err == nil:
			fmt.Fprintln(w, escape(fmt.Sprint(cmd)))
			continue
		case errors.Is(err, io.EOF):
			return w.Flush()
		case errors.Is(err, io.ErrUnexpectedEOF):
			fmt.Fprintf(w, "! incomplete line at end of input (%d bytes)\n", r.Buffer().Len())
			return w.Flush()
		}

		fmt.Fprintf(w, "! %v\n", err)
		if command.ShouldCloseConnection(err) {
			return errors.Join(w.Flush(), fmt.Errorf("decode: %w", err))
		}
	}
}

// escape replaces bytes that are neither printable ASCII nor space with \xNN.
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if command.IsPrint(c) || command.IsSpace(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, `\x%02x`, c)
	}
	return b.String()
}
