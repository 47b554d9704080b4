package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"framepruner/internal/models"
	"framepruner/internal/repository/sqlite"
)

func main() {
	dbPath := flag.String("db", os.Getenv("DB_PATH"), "Database path")
	runID := flag.String("run", "", "Show the verdicts of this run")
	directory := flag.String("dir", "", "Only list runs over this directory")
	limit := flag.Int("limit", 20, "Number of runs to list")
	discarded := flag.Bool("discarded", false, "Only show discarded frames")
	remove := flag.String("delete", "", "Delete this run and its verdicts")
	flag.Parse()

	if *dbPath == "" {
		log.Fatalf("Database path is required (-db or DB_PATH)")
	}

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	runs := sqlite.NewRunRepository(db)
	verdicts := sqlite.NewVerdictRepository(db)

	switch {
	case *remove != "":
		if err := runs.Delete(*remove); err != nil {
			log.Fatalf("Failed to delete run: %v", err)
		}
		fmt.Printf("Deleted run %s\n", *remove)

	case *runID != "":
		run, err := runs.GetByID(*runID)
		if err != nil {
			log.Fatalf("Failed to get run: %v", err)
		}
		if run == nil {
			log.Fatalf("Run %s not found", *runID)
		}
		printRun(*run)

		counts, err := verdicts.GetCategoryCounts(run.ID)
		if err != nil {
			log.Fatalf("Failed to count categories: %v", err)
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-18s %d\n", name, counts[name])
		}

		list, err := verdicts.GetByRunID(run.ID, *discarded)
		if err != nil {
			log.Fatalf("Failed to get verdicts: %v", err)
		}
		fmt.Println()
		for _, v := range list {
			mark := " "
			if v.Discarded {
				mark = "x"
			}
			fmt.Printf("[%s] %5d %-30s %-18s p=%.4f regions=%d/%d\n",
				mark, v.FrameIndex, v.Filename, v.Category, v.Probability, v.Regions, v.TotalRegions)
		}

	default:
		list, err := runs.GetAll(&models.RunFilter{Directory: *directory, Limit: *limit})
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("No runs recorded")
			return
		}
		for _, run := range list {
			printRun(run)
		}
	}
}

func printRun(run models.Run) {
	duration := "-"
	if run.FinishedAt != nil {
		duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
	}
	mode := ""
	if run.DryRun {
		mode = " (dry run)"
	}
	fmt.Printf("%s  %s  %-8s %4d/%-4d discarded  %8s  %s%s\n",
		run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Status,
		run.Discarded, run.Frames, duration, run.Directory, mode)
	if run.Error != "" {
		fmt.Printf("    error: %s\n", run.Error)
	}
}
