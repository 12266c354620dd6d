// Package parser turns raw command output from cluster nodes into typed
// metric records. Parsers are pure functions: malformed or truncated input
// yields a nil record, never an error escaping to the caller.
//
// The command strings below are the protocol between this service and the
// nodes. Changing a query (field order, delimiter, section order) is a
// breaking change to the matching parser, so the set is versioned and the
// tests carry fixtures of captured real output.
package parser

import "strings"

// CommandSetVersion identifies the expected output shapes of the commands
// below. Bump it whenever a query or its parser changes.
const CommandSetVersion = "v1"

const (
	// GPUQuery yields one CSV line per GPU:
	// name, util %, mem used MiB, mem total MiB, temp C, power draw W,
	// power limit W, fan %, driver version.
	GPUQuery = `nvidia-smi --query-gpu=name,utilization.gpu,memory.used,memory.total,temperature.gpu,power.draw,power.limit,fan.speed,driver_version --format=csv,noheader,nounits 2>/dev/null || true`

	// CPUQuery yields /proc/stat, /proc/loadavg and the first cpuinfo
	// model line, separated by SectionSeparator.
	CPUQuery = `cat /proc/stat; echo "---"; cat /proc/loadavg; echo "---"; grep -m1 "model name" /proc/cpuinfo 2>/dev/null || true`

	// MemoryQuery yields "Key:  value kB" lines.
	MemoryQuery = `cat /proc/meminfo`

	// StorageQuery yields a df header plus one data row for the root
	// filesystem, sizes in bytes.
	StorageQuery = `df -B1 /`

	// SystemQuery yields hostname, /proc/uptime, kernel and OS name,
	// separated by SectionSeparator.
	SystemQuery = `hostname; echo "---"; cat /proc/uptime; echo "---"; uname -sr; echo "---"; grep PRETTY_NAME /etc/os-release 2>/dev/null || true`
)

// SectionSeparator delimits sections in batched command output.
const SectionSeparator = "---"

// OverviewQuery collects everything a node overview needs in a single
// round trip. Section order is fixed:
// 0 GPU CSV, 1 /proc/stat, 2 /proc/loadavg, 3 cpuinfo model line,
// 4 /proc/meminfo, 5 df, 6 hostname, 7 /proc/uptime, 8 uname, 9 os-release.
var OverviewQuery = strings.Join([]string{
	`nvidia-smi --query-gpu=name,utilization.gpu,memory.used,memory.total,temperature.gpu,power.draw,power.limit,fan.speed,driver_version --format=csv,noheader,nounits 2>/dev/null || true`,
	`cat /proc/stat`,
	`cat /proc/loadavg`,
	`grep -m1 "model name" /proc/cpuinfo 2>/dev/null || true`,
	`cat /proc/meminfo`,
	`df -B1 /`,
	`hostname`,
	`cat /proc/uptime`,
	`uname -sr`,
	`grep PRETTY_NAME /etc/os-release 2>/dev/null || true`,
}, `; echo "---"; `)

// SplitSections splits batched output on separator lines. Section bodies
// keep their internal newlines and are trimmed of surrounding whitespace.
func SplitSections(output string) []string {
	var sections []string
	var current []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == SectionSeparator {
			sections = append(sections, strings.TrimSpace(strings.Join(current, "\n")))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	sections = append(sections, strings.TrimSpace(strings.Join(current, "\n")))
	return sections
}
