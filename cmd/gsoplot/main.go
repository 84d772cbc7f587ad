// Copyright (c) 2023 Colin McRae

// gsoplot renders the Gram-Schmidt profile history written by a
// reduction with the DumpGSO flag as an HTML line chart, one series
// per tour. Steeper lines mean a less reduced basis, so watching the
// series flatten tour by tour shows the reduction converging.
//
// Usage:
//
//	gsoplot -in gso.txt -out gso.html [-title "BKZ-20 profile"]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// profile is one dumped line: the label the reduction prefixed it with
// and the log r values, one per basis row.
type profile struct {
	label string
	logR  []float64
}

// parseProfiles reads the dump format: each line is a free-form prefix
// followed by the log r values. The trailing run of numeric fields is
// the profile; everything before it is the label.
func parseProfiles(filename string) ([]profile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("parseProfiles: could not open %q: %q", filename, err.Error())
	}
	defer func() { _ = file.Close() }()

	var profiles []profile
	scanner := bufio.NewScanner(file)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		firstValue := len(fields)
		for firstValue > 0 {
			if _, err := strconv.ParseFloat(fields[firstValue-1], 64); err != nil {
				break
			}
			firstValue--
		}
		if firstValue == len(fields) {
			return nil, fmt.Errorf("parseProfiles: line %d of %q has no values", lineNumber, filename)
		}
		logR := make([]float64, 0, len(fields)-firstValue)
		for _, field := range fields[firstValue:] {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf(
					"parseProfiles: line %d of %q: could not parse %q", lineNumber, filename, field,
				)
			}
			logR = append(logR, value)
		}
		label := strings.TrimSuffix(strings.Join(fields[:firstValue], " "), ":")
		if label == "" {
			label = fmt.Sprintf("profile %d", len(profiles))
		}
		profiles = append(profiles, profile{label: label, logR: logR})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parseProfiles: could not read %q: %q", filename, err.Error())
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("parseProfiles: %q holds no profiles", filename)
	}
	return profiles, nil
}

// renderChart writes the HTML chart with one line per profile.
func renderChart(profiles []profile, title string, outputFilename string) error {
	numRows := 0
	for _, p := range profiles {
		if len(p.logR) > numRows {
			numRows = len(p.logR)
		}
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "row"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "log r"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	xAxis := make([]string, numRows)
	for i := range xAxis {
		xAxis[i] = strconv.Itoa(i)
	}
	line.SetXAxis(xAxis)
	for _, p := range profiles {
		items := make([]opts.LineData, len(p.logR))
		for i, value := range p.logR {
			items[i] = opts.LineData{Value: value}
		}
		line.AddSeries(p.label, items)
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return fmt.Errorf("renderChart: could not create %q: %q", outputFilename, err.Error())
	}
	defer func() { _ = file.Close() }()
	if err = line.Render(file); err != nil {
		return fmt.Errorf("renderChart: could not render %q: %q", outputFilename, err.Error())
	}
	return nil
}

func main() {
	inputFilename := flag.String("in", "", "profile history written with the DumpGSO flag")
	outputFilename := flag.String("out", "gso.html", "HTML file to write")
	title := flag.String("title", "Gram-Schmidt profile", "chart title")
	flag.Parse()
	if *inputFilename == "" {
		flag.Usage()
		os.Exit(2)
	}
	profiles, err := parseProfiles(*inputFilename)
	if err != nil {
		log.Fatalf("gsoplot: %s", err.Error())
	}
	if err = renderChart(profiles, *title, *outputFilename); err != nil {
		log.Fatalf("gsoplot: %s", err.Error())
	}
}
