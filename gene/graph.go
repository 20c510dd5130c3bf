// estalign: aligning cDNA and EST reads to genomic sequences.
// Copyright (c) 2017-2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/estalign/blob/master/LICENSE.txt>.

package gene

// A graph of read indices for determining which reads end up in the
// same zone.

type graph [][]int // adjacency lists for the edges

func newGraph(size int) graph {
	return make([][]int, size)
}

func (g graph) addNeighbor(from, to int) {
	n := g[from]
	for _, t := range n {
		if t == to {
			return
		}
	}
	g[from] = append(n, to)
}

func (g graph) addEdge(left, right int) {
	if left == right {
		return
	}
	g.addNeighbor(left, right)
	g.addNeighbor(right, left)
}

func findRepNode(grouping []int, node int) int {
	rep := node
	for rep != grouping[rep] {
		rep = grouping[rep]
	}
	for node != rep {
		next := grouping[node]
		grouping[node] = rep
		node = next
	}
	return rep
}

func joinNodes(grouping []int, node1, node2 int) {
	rep1 := findRepNode(grouping, node1)
	rep2 := findRepNode(grouping, node2)
	if rep1 == rep2 {
		return
	}
	// the smaller index represents the group, which keeps clusters stable
	if rep1 < rep2 {
		grouping[rep2] = rep1
	} else {
		grouping[rep1] = rep2
	}
}

// cluster returns the representative node of every node.
func (g graph) cluster() []int {
	cluster := make([]int, len(g))
	for i := range cluster {
		cluster[i] = i
	}
	for i := range g {
		for _, j := range g[i] {
			joinNodes(cluster, j, i)
		}
	}
	for i := range cluster {
		findRepNode(cluster, i)
	}
	return cluster
}
