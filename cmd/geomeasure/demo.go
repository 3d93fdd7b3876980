package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"geomeasure/internal/consolemap"
	"geomeasure/internal/geojson"
	"geomeasure/internal/measure"
	"geomeasure/internal/pool"
	"geomeasure/internal/view"
	"geomeasure/pkg/geo"
)

var demoGeoJSON bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted two-view measurement session in the terminal",
	Long: `Drive two console-backed views through a scripted measurement session
and print every drawing operation. The second view receives everything the
first one measures, which makes the cross-view synchronization visible
without a window.`,
	Run: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&demoGeoJSON, "geojson", false, "print completed measurements as GeoJSON")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) {
	p := pool.New()

	alpha := consolemap.New("alpha")
	bravo := consolemap.New("bravo")

	alphaView, err := view.New(alpha, p, view.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	bravoView, err := view.New(bravo, p, view.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer alphaView.Close()
	defer bravoView.Close()

	heading := color.New(color.FgCyan, color.Bold)

	heading.Println("== multi-segment distance on alpha ==")
	if err := alphaView.ActivateMode(measure.KindMultiDistance); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	alpha.Click(geo.Coordinate{Lat: 48.1374, Lng: 11.5755})
	alpha.Click(geo.Coordinate{Lat: 48.1390, Lng: 11.5801})
	alpha.Click(geo.Coordinate{Lat: 48.1412, Lng: 11.5826})
	alpha.MoveTo(geo.Coordinate{Lat: 48.1430, Lng: 11.5850})
	alpha.RightClick(geo.Coordinate{Lat: 48.1430, Lng: 11.5850})

	heading.Println("== area on alpha ==")
	if err := alphaView.ActivateMode(measure.KindArea); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	alpha.Click(geo.Coordinate{Lat: 48.1500, Lng: 11.5600})
	alpha.Click(geo.Coordinate{Lat: 48.1520, Lng: 11.5700})
	alpha.Click(geo.Coordinate{Lat: 48.1480, Lng: 11.5720})
	alpha.RightClick(geo.Coordinate{Lat: 48.1460, Lng: 11.5650})

	heading.Println("== point info on bravo, mirrored back to alpha ==")
	if err := bravoView.ActivateMode(measure.KindPointInfo); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	bravo.Click(geo.Coordinate{Lat: 48.1355, Lng: 11.5820})

	heading.Println("== pool contents ==")
	for _, g := range p.Data() {
		fmt.Printf("%s  %-15s  %-9s  %d points  (from %s)\n",
			g.ID, g.Kind, g.Status, g.Coords.Len(), g.MapName)
	}

	if demoGeoJSON {
		heading.Println("== geojson export ==")
		out, err := geojson.FromGroups(p.Data()).ToJSONIndent()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	}
}
