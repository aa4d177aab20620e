package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// exportCmd asks the board for its generated pattern and renders the hex row
// dump as ASCII art, one character per LED.
func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Dump the board's current pattern as ASCII art",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p, err := openPort()
			if err != nil {
				return err
			}
			defer p.Close()

			if _, err := p.Write([]byte("p\n")); err != nil {
				return err
			}

			r := bufio.NewReader(p)
			width, height := 0, 0
			rows := map[int]uint64{}
			for {
				line, err := r.ReadString('\n')
				if err != nil {
					break
				}
				line = strings.TrimSpace(line)
				switch {
				case strings.HasPrefix(line, "PATTERN,"):
					fmt.Sscanf(line, "PATTERN,%d,%d", &width, &height)
				case strings.HasPrefix(line, "ROW,"):
					parts := strings.Split(line, ",")
					if len(parts) != 3 {
						continue
					}
					y, err := strconv.Atoi(parts[1])
					if err != nil {
						continue
					}
					bits, err := strconv.ParseUint(parts[2], 16, 64)
					if err != nil {
						continue
					}
					rows[y] = bits
				}
				if height > 0 && len(rows) == height {
					break
				}
			}
			if height == 0 {
				return fmt.Errorf("no pattern received")
			}

			var sb strings.Builder
			for y := 0; y < height; y++ {
				bits := rows[y]
				for x := 0; x < width; x++ {
					if bits&(1<<uint(x)) != 0 {
						sb.WriteByte('#')
					} else {
						sb.WriteByte('.')
					}
				}
				sb.WriteByte('\n')
			}
			fmt.Print(sb.String())
			return nil
		},
	}
}
