package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/scipo-code/ordinator-hypergraph/pkg/fixture"
	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/journal"
	journalredis "github.com/scipo-code/ordinator-hypergraph/pkg/journal/redis"
)

// buildLeaseTTL bounds how long a crashed builder blocks the next one.
const buildLeaseTTL = 5 * time.Minute

func main() {
	var (
		periodsFile     string
		workOrdersFile  string
		techniciansFile string
		dbPath          string
		redisAddr       string
		jsonOutput      bool
		outputFile      string
	)

	flag.StringVar(&periodsFile, "periods", "", "Path to periods JSON file")
	flag.StringVar(&workOrdersFile, "workorders", "", "Path to work orders JSON file")
	flag.StringVar(&techniciansFile, "technicians", "", "Path to technicians JSON file")
	flag.StringVar(&dbPath, "db", "", "SQLite journal path; empty builds in memory only")
	flag.StringVar(&redisAddr, "redis", "", "Redis address for the builder lease; empty uses the journal's lease table")
	flag.BoolVar(&jsonOutput, "json", false, "Output report as JSON")
	flag.StringVar(&outputFile, "out", "", "Write report to file instead of stdout")
	flag.Parse()

	if periodsFile == "" || workOrdersFile == "" || techniciansFile == "" {
		flag.Usage()
		log.Fatal("all of -periods, -workorders and -technicians are required")
	}

	ds, err := fixture.Load(periodsFile, workOrdersFile, techniciansFile)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	graph := hypergraph.New()
	target := fixture.Graph(graph)

	if dbPath != "" {
		store, err := journal.NewStore(dbPath)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer store.Close()

		// The journal is shared state; hold the builder lease for the whole
		// build so concurrent builders fail fast instead of interleaving.
		writerID := uuid.NewString()
		var leases journal.LeaseStore = store
		if redisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: redisAddr})
			defer client.Close()
			leases = journalredis.NewRedisLeaseStore(client)
		}
		release, err := journal.AcquireBuildLease(context.Background(), leases, writerID, buildLeaseTTL)
		if err != nil {
			log.Fatalf("Failed to acquire build lease: %v", err)
		}
		defer func() {
			if err := release(); err != nil {
				log.Printf("Failed to release build lease: %v", err)
			}
		}()

		target = journal.NewRecorder(graph, store, writerID)
	}

	report, err := ds.Populate(target)
	if err != nil {
		log.Fatalf("Failed to populate graph: %v", err)
	}

	writeReport(graph, report, jsonOutput, outputFile)
}

type buildReport struct {
	Nodes            int                `json:"nodes"`
	Hyperedges       int                `json:"hyperedges"`
	SkillsAdded      int                `json:"skills_added"`
	PeriodsAdded     int                `json:"periods_added"`
	WorkOrdersAdded  int                `json:"work_orders_added"`
	TechniciansAdded int                `json:"technicians_added"`
	Rejected         []rejectionSummary `json:"rejected,omitempty"`
}

type rejectionSummary struct {
	Record string `json:"record"`
	Reason string `json:"reason"`
}

func writeReport(graph *hypergraph.Graph, rep *fixture.Report, jsonFmt bool, filePath string) {
	summary := buildReport{
		Nodes:            graph.NodeCount(),
		Hyperedges:       graph.HyperedgeCount(),
		SkillsAdded:      rep.SkillsAdded,
		PeriodsAdded:     rep.PeriodsAdded,
		WorkOrdersAdded:  rep.WorkOrdersAdded,
		TechniciansAdded: rep.TechniciansAdded,
	}
	for _, r := range rep.Rejected {
		summary.Rejected = append(summary.Rejected, rejectionSummary{Record: r.Record, Reason: r.Err.Error()})
	}

	var output []byte
	var err error

	if jsonFmt {
		output, err = json.MarshalIndent(summary, "", "  ")
	} else {
		var buf bytes.Buffer
		buf.WriteString("\n--- Graph Build Report ---\n")
		buf.WriteString(fmt.Sprintf("Nodes: %d | Hyperedges: %d\n", summary.Nodes, summary.Hyperedges))
		buf.WriteString(fmt.Sprintf("Skills: %d | Periods: %d | Work orders: %d | Technicians: %d\n",
			summary.SkillsAdded, summary.PeriodsAdded, summary.WorkOrdersAdded, summary.TechniciansAdded))

		if len(summary.Rejected) > 0 {
			buf.WriteString("\nRejected records:\n")
			for _, r := range summary.Rejected {
				buf.WriteString(fmt.Sprintf("[REJECTED] %s: %s\n", r.Record, r.Reason))
			}
		}
		output = buf.Bytes()
	}

	if err != nil {
		log.Fatalf("Failed to marshal report: %v", err)
	}

	if filePath != "" {
		if err := os.WriteFile(filePath, output, 0644); err != nil {
			log.Fatalf("Failed to write report to %s: %v", filePath, err)
		}
		fmt.Printf("Report written to %s\n", filePath)
	} else {
		fmt.Println(string(output))
	}
}
