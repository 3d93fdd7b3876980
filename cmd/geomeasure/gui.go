package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"geomeasure/internal/fynemap"
	"geomeasure/internal/geojson"
	"geomeasure/internal/measure"
	"geomeasure/internal/pool"
	"geomeasure/internal/view"
	"geomeasure/pkg/geo"
)

var (
	guiLat float64
	guiLng float64
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the fyne measurement window",
	Long: `Open a fyne window for taking measurements. The toolbar switches
between distance, multi_distances, area, curve and pointInfo; Export
prints completed measurements as GeoJSON, Clear removes the view's own
measurements.`,
	Run: runGUI,
}

func init() {
	guiCmd.Flags().Float64Var(&guiLat, "lat", 48.1374, "initial center latitude")
	guiCmd.Flags().Float64Var(&guiLng, "lng", 11.5755, "initial center longitude")
	rootCmd.AddCommand(guiCmd)
}

var guiModes = []measure.Kind{
	measure.KindDistance,
	measure.KindMultiDistance,
	measure.KindArea,
	measure.KindCurve,
	measure.KindPointInfo,
}

func runGUI(cmd *cobra.Command, args []string) {
	a := app.New()
	w := a.NewWindow("GeoMeasure")

	p := pool.New()
	fmap := fynemap.New("fyne", geo.Coordinate{Lat: guiLat, Lng: guiLng}, 0)
	v, err := view.New(fmap, p, view.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	statusLabel := widget.NewLabel("No mode active")
	statusLabel.TextStyle = fyne.TextStyle{Bold: true}

	modeButtons := make([]fyne.CanvasObject, 0, len(guiModes)+2)
	for _, kind := range guiModes {
		kind := kind
		modeButtons = append(modeButtons, widget.NewButton(kind.String(), func() {
			if err := v.ActivateMode(kind); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return
			}
			statusLabel.SetText("Mode: " + kind.String())
		}))
	}
	modeButtons = append(modeButtons, widget.NewButton("Export", func() {
		out, err := geojson.FromGroups(p.Data()).ToJSONIndent()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Println(string(out))
	}))
	modeButtons = append(modeButtons, widget.NewButton("Clear", func() {
		v.ClearOwn()
		statusLabel.SetText("No mode active")
	}))

	toolbar := container.NewHBox(modeButtons...)
	content := container.NewBorder(
		container.NewVBox(toolbar, statusLabel),
		nil, nil, nil,
		fmap,
	)
	w.SetContent(content)
	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
	v.Close()
}
