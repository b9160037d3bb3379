/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/nodalfe/gofeval/elements"
	"github.com/nodalfe/gofeval/fe"
	"github.com/nodalfe/gofeval/mesh"
	"github.com/nodalfe/gofeval/tensor"
)

type ScanModel struct {
	ParamsFile string
	Profile    bool
}

// ScanParameters obtained from the YAML input file
type ScanParameters struct {
	Title           string  `yaml:"Title"`
	Nx              int     `yaml:"Nx"`
	Ny              int     `yaml:"Ny"`
	XMin            float64 `yaml:"XMin"`
	XMax            float64 `yaml:"XMax"`
	YMin            float64 `yaml:"YMin"`
	YMax            float64 `yaml:"YMax"`
	QuadratureOrder int     `yaml:"QuadratureOrder"`
	Components      int     `yaml:"Components"`
	Workers         int     `yaml:"Workers"`
}

func (sp *ScanParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, sp)
}

func (sp *ScanParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sp.Title)
	fmt.Printf("[%d x %d]\t\t= Mesh\n", sp.Nx, sp.Ny)
	fmt.Printf("[%4.2f,%4.2f]x[%4.2f,%4.2f]\t= Domain\n", sp.XMin, sp.XMax, sp.YMin, sp.YMax)
	fmt.Printf("[%d]\t\t\t= Quadrature Order\n", sp.QuadratureOrder)
	fmt.Printf("[%d]\t\t\t= Components\n", sp.Components)
	fmt.Printf("[%d]\t\t\t= Workers\n", sp.Workers)
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Sweep a Cartesian mesh, evaluating a field on every cell",
	Long: `
Builds a Cartesian quad mesh, interpolates a reference field onto a Q1
space, then reinitializes one evaluation context on every cell in order,
integrating the field and its gradient energy. Reports how often the
translation optimization kicked in.

gofeval scan -I scan.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		sm := &ScanModel{}
		sm.ParamsFile, _ = cmd.Flags().GetString("inputParametersFile")
		sm.Profile, _ = cmd.Flags().GetBool("profile")
		sp := processScanInput(sm)
		if sm.Profile {
			defer profile.Start().Stop()
		}
		RunScan(sp)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("inputParametersFile", "I", "", "YAML input parameters file")
	scanCmd.Flags().Bool("profile", false, "write a CPU profile of the sweep")
}

func processScanInput(sm *ScanModel) (sp *ScanParameters) {
	sp = &ScanParameters{
		Title:           "default scan",
		Nx:              64,
		Ny:              64,
		XMin:            0, XMax: 1,
		YMin:            0, YMax: 1,
		QuadratureOrder: 2,
		Components:      1,
		Workers:         1,
	}
	if len(sm.ParamsFile) == 0 {
		fmt.Printf("no input parameters file given, using defaults\n")
		sp.Print()
		return
	}
	data, err := ioutil.ReadFile(sm.ParamsFile)
	if err != nil {
		fmt.Printf("error: unable to read parameters file %s: %s\n", sm.ParamsFile, err.Error())
		os.Exit(1)
	}
	if err = sp.Parse(data); err != nil {
		fmt.Printf("error: unable to parse parameters file %s: %s\n", sm.ParamsFile, err.Error())
		os.Exit(1)
	}
	sp.Print()
	return
}

// RunScan is the whole-mesh sweep: one context, reinitialized per cell in
// row-major order so that consecutive cells within a row are translates.
func RunScan(sp *ScanParameters) {
	fe.SetMaxWorkers(sp.Workers)
	var (
		tria  = mesh.NewCartesianQuads(sp.Nx, sp.Ny, sp.XMin, sp.YMin, sp.XMax, sp.YMax)
		q1    = elements.NewQ1()
		el    fe.FiniteElement
		start = time.Now()
	)
	el = q1
	if sp.Components > 1 {
		el = elements.NewVectorElement(q1, sp.Components)
	}
	var (
		mapping = elements.NewMappingQ1()
		quad    = elements.CellQuadrature(sp.QuadratureOrder)
		flags   = fe.UpdateValues | fe.UpdateGradients | fe.UpdateJxW | fe.UpdateQuadraturePoints
		fv      = fe.NewFEValues(mapping, el, quad, flags)
		dofMap  = elements.NewQ1DofMap(tria, sp.Components)
	)
	defer fv.Close()
	fv.SetDofMap(dofMap)

	// nodal interpolation of u(x,y) = sin(pi x) sin(pi y) into component 0
	coeffs := make(fe.SliceSource, dofMap.NDofs())
	for v := 0; v < tria.NVertices(); v++ {
		coeffs[v] = math.Sin(math.Pi*tria.VX[v]) * math.Sin(math.Pi*tria.VY[v])
	}

	var (
		scalar       = fv.Scalar(0)
		values       = make([]float64, quad.Len())
		gradients    = make([]tensor.T1F, quad.Len())
		integral     float64
		energy       float64
		translations int
	)
	for k := 0; k < tria.NCells(); k++ {
		fv.Reinit(tria.Cell(k))
		if fv.CellSimilarity() == fe.SimilarityTranslation {
			translations++
		}
		scalar.GetFunctionValues(coeffs, values)
		scalar.GetFunctionGradients(coeffs, gradients)
		for q := 0; q < fv.NQuadPoints(); q++ {
			integral += values[q] * fv.JxW(q)
			energy += (gradients[q][0]*gradients[q][0] + gradients[q][1]*gradients[q][1]) * fv.JxW(q)
		}
	}
	fmt.Printf("cells: %d, quadrature points per cell: %d\n", tria.NCells(), quad.Len())
	fmt.Printf("integral of u       = %10.7f\n", integral)
	fmt.Printf("gradient energy     = %10.7f\n", energy)
	fmt.Printf("translation reuse   = %d of %d cells\n", translations, tria.NCells())
	fmt.Printf("elapsed             = %v\n", time.Since(start))
}
