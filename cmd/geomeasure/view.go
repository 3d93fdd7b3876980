package main

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"geomeasure/internal/geojson"
	"geomeasure/internal/measure"
	"geomeasure/internal/pool"
	"geomeasure/internal/raylibmap"
	"geomeasure/internal/view"
	"geomeasure/pkg/geo"
)

var (
	viewLat  float64
	viewLng  float64
	viewMode string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open an interactive measurement window",
	Long: `Open a raylib window for taking measurements. Keys 1-5 switch between
distance, multi_distances, area, curve and pointInfo; Escape leaves the
active mode, E prints completed measurements as GeoJSON, C clears the
view's own measurements.`,
	Run: runView,
}

func init() {
	viewCmd.Flags().Float64Var(&viewLat, "lat", 48.1374, "initial center latitude")
	viewCmd.Flags().Float64Var(&viewLng, "lng", 11.5755, "initial center longitude")
	viewCmd.Flags().StringVarP(&viewMode, "mode", "m", "multi_distances", "initial measurement mode")
	rootCmd.AddCommand(viewCmd)
}

var modeKeys = map[int32]measure.Kind{
	rl.KeyOne:   measure.KindDistance,
	rl.KeyTwo:   measure.KindMultiDistance,
	rl.KeyThree: measure.KindArea,
	rl.KeyFour:  measure.KindCurve,
	rl.KeyFive:  measure.KindPointInfo,
}

func runView(cmd *cobra.Command, args []string) {
	kind, ok := measure.KindFromString(viewMode)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", viewMode)
		os.Exit(1)
	}

	screenWidth := int32(1280)
	screenHeight := int32(800)
	rl.InitWindow(screenWidth, screenHeight, "GeoMeasure")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	p := pool.New()
	rlmap := raylibmap.New("raylib", raylibmap.Viewport{
		Center: geo.Coordinate{Lat: viewLat, Lng: viewLng},
		Width:  int(screenWidth),
		Height: int(screenHeight),
	})
	v, err := view.New(rlmap, p, view.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := v.ActivateMode(kind); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for !rl.WindowShouldClose() {
		handleKeys(v, p)

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(18, 18, 24, 255))
		rlmap.Frame()
		drawStatus(v)
		rl.EndDrawing()
	}
	v.Close()
}

func handleKeys(v *view.View, p *pool.Pool) {
	for key, kind := range modeKeys {
		if rl.IsKeyPressed(key) {
			if err := v.ActivateMode(kind); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		v.DeactivateMode()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.ClearOwn()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		out, err := geojson.FromGroups(p.Data()).ToJSONIndent()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Println(string(out))
	}
}

func drawStatus(v *view.View) {
	status := "no mode (1-5 to choose)"
	if kind, ok := v.ActiveKind(); ok {
		status = "mode: " + kind.String()
	}
	rl.DrawText(status, 10, 10, 18, rl.RayWhite)
	rl.DrawText("left: add point  right: finalize  middle: delete  E: export  C: clear", 10, 34, 14, rl.Gray)
}
