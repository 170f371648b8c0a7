package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"MandelbrotExplorer/coordinator"
	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
)

func newZoomCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "zoom <factor>",
		Short: "Zoom around the center of the view; a factor of 0 resets the view and iterations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			factor, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid zoom factor %q: %w", args[0], err)
			}
			return callEvent(cmd, "Zoom", factor)
		},
	}
}

func newCenterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "center <x> <y>",
		Short: "Move the point under pixel (x, y) to the center of the view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			point, err := parsePoint(args)
			if err != nil {
				return err
			}
			return callEvent(cmd, "Center", point)
		},
	}
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Return to the default view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return callEvent(cmd, "Reset", misc.Nothing{})
		},
	}
}

func newIterationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "iterations <factor>",
		Short: "Multiply the iteration budget by factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			factor, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid iteration factor %q: %w", args[0], err)
			}
			return callEvent(cmd, "ChangeIterations", factor)
		},
	}
}

func newHistogramCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "histogram",
		Short: "Toggle coloring by histogram equalized iterations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return callEvent(cmd, "ToggleHistogram", misc.Nothing{})
		},
	}
}

func newSchemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "scheme <green|rainbow|redish|blue>",
		Short:     "Select the color scheme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"green", "rainbow", "redish", "blue"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return callEvent(cmd, "SetScheme", args[0])
		},
	}
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <x> <y>",
		Short: "Describe the point under pixel (x, y)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			point, err := parsePoint(args)
			if err != nil {
				return err
			}
			return callEvent(cmd, "Info", point)
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Describe the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return callEvent(cmd, "Status", misc.Nothing{})
		},
	}
}

func newResizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <width> <height>",
		Short: "Change the viewport and reset the view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid width %q: %w", args[0], err)
			}
			height, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid height %q: %w", args[1], err)
			}
			return callEvent(cmd, "Resize", coordinator.Viewport{Width: uint(width), Height: uint(height)})
		},
	}
}

func newShowCommand() *cobra.Command {
	var columns, rows int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current frame as true color blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var img coordinator.ImageData
			if err := call("Image", misc.Nothing{}, &img); err != nil {
				return err
			}
			if columns <= 0 || rows <= 0 {
				c, r := terminalSize()
				if columns <= 0 {
					columns = c
				}
				if rows <= 0 {
					rows = r - 1
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBlocks(img, columns, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&columns, "columns", 0, "Columns to draw (default terminal width)")
	cmd.Flags().IntVar(&rows, "rows", 0, "Rows to draw (default terminal height)")
	return cmd
}

func newColorsCommand() *cobra.Command {
	var columns, rows int
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Print a bar of every color scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if columns <= 0 {
				columns, _ = terminalSize()
			}
			if rows <= 0 {
				rows = 2
			}

			var bars []coordinator.ImageData
			size := coordinator.Viewport{Width: uint(columns), Height: uint(2 * rows)}
			if err := call("Palettes", size, &bars); err != nil {
				return err
			}
			for i, bar := range bars {
				fmt.Fprintln(cmd.OutOrStdout(), mandelbrot.ColorSchemes[i])
				fmt.Fprint(cmd.OutOrStdout(), renderBlocks(bar, columns, rows))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&columns, "columns", 0, "Columns to draw (default terminal width)")
	cmd.Flags().IntVar(&rows, "rows", 2, "Rows per color scheme")
	return cmd
}

func newSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <file.png>",
		Short: "Save the current frame as a png image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data coordinator.ImageData
			if err := call("Image", misc.Nothing{}, &data); err != nil {
				return err
			}
			img, err := toRGBA(data)
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := png.Encode(f, img); err != nil {
				f.Close()
				return fmt.Errorf("unable to encode %s: %w", args[0], err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %dx%d frame to %s\n", data.Width, data.Height, args[0])
			return nil
		},
	}
}

func parsePoint(args []string) (coordinator.Point, error) {
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return coordinator.Point{}, fmt.Errorf("invalid x %q: %w", args[0], err)
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return coordinator.Point{}, fmt.Errorf("invalid y %q: %w", args[1], err)
	}
	return coordinator.Point{X: x, Y: y}, nil
}

func toRGBA(data coordinator.ImageData) (*image.RGBA, error) {
	if data.Width <= 0 || data.Height <= 0 || len(data.Pix) != data.Width*data.Height*4 {
		return nil, fmt.Errorf("image data of %d bytes does not match %dx%d", len(data.Pix), data.Width, data.Height)
	}
	return &image.RGBA{
		Pix:    data.Pix,
		Rect:   image.Rect(0, 0, data.Width, data.Height),
		Stride: data.Width * 4,
	}, nil
}
