package plate_test

import (
	"fmt"

	"github.com/matzehuels/keyplate/pkg/geom"
	"github.com/matzehuels/keyplate/pkg/kle"
	"github.com/matzehuels/keyplate/pkg/plate"
)

func ExampleBuildFromLayout() {
	p, err := plate.BuildFromLayout(`["a","b"]`, plate.DefaultParams())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("plate %.3f x %.3f x %.1f\n", p.Width, p.Height, p.Thickness)
	for _, s := range p.Switches {
		fmt.Printf("%s at (%.3f, %.3f)\n", s.Label, s.Center.X, s.Center.Y)
	}
	// Output:
	// plate 44.100 x 25.050 x 1.5
	// a at (-9.525, 0.000)
	// b at (9.525, 0.000)
}

func ExampleScheme_Decide() {
	grid, _ := kle.Parse(`[{w:6.25},"Space"],[{h:2.25},"Enter"],["Esc"]`)
	keys := plate.FromGridKeys(grid, plate.DefaultUnit)

	kad := plate.KadScheme()
	for _, k := range keys {
		d := kad.Decide(k, plate.DefaultUnit, geom.Vec{})
		if !d.Eligible {
			fmt.Printf("%s: no stabilizer\n", k.Label)
			continue
		}
		fmt.Printf("%s: %.2fu, rotate %g\n", k.Label, d.LongerU, d.AxisRotation)
	}
	// Output:
	// Space: 6.25u, rotate 0
	// Enter: 2.25u, rotate 90
	// Esc: no stabilizer
}
