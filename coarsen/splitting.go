package coarsen

// FormCoarseLevel runs the Brandt-Oswald-Stuben two-pass C/F splitting
// heuristic over the strong-connection graph s of a row-by-row matrix
// (section 4.4), grounded on form_coarse_level in coarsening_rs.c.
func FormCoarseLevel(a rowCounter, s *Strength) ([]Marker, int) {
	row := s.Rows
	markers := make([]Marker, row)
	st := s.Transpose()

	lambda := make([]int, row)
	for i := 0; i < row; i++ {
		lambda[i] = st.Ia[i+1] - st.Ia[i]
	}

	numLeft := 0
	for i := 0; i < row; i++ {
		if a.RowNNZ(i) <= 1 {
			markers[i] = Isolated
			lambda[i] = 0
		} else {
			markers[i] = Fine // placeholder for "undecided"; overwritten below
			numLeft++
		}
	}

	const undecided = Fine - 1000 // sentinel distinct from Fine/Coarse/Isolated
	undecidedMark := Marker(undecided)
	for i := 0; i < row; i++ {
		if markers[i] != Isolated {
			markers[i] = undecidedMark
		}
	}

	list := newBucketList(row, row+2)

	// forEachStrongTarget(k) visits every j strongly dependent on k, i.e.
	// every entry of S(k); forEachStrongSource(k) visits every i with
	// k in S(i), i.e. every entry of S^T(k).
	forEachStrongSource := func(k int, f func(i int)) {
		for idx := st.Ia[k]; idx < st.Ia[k+1]; idx++ {
			f(st.Ja[idx])
		}
	}

	bumpAndReinsert := func(j int) {
		list.remove(j)
		lambda[j]++
		list.insert(j, lambda[j])
	}

	// Step 3: seed the bucket list, demoting nonpositive-measure vertices
	// to Fine immediately and propagating the demotion.
	for i := 0; i < row; i++ {
		if markers[i] != undecidedMark {
			continue
		}
		if lambda[i] > 0 {
			list.insert(i, lambda[i])
			continue
		}
		markers[i] = Fine
		numLeft--
		s.Row(i, func(j int) {
			if markers[j] != undecidedMark {
				return
			}
			// j's own turn in this seeding loop hasn't happened yet, so it
			// isn't in the bucket list to remove-and-reinsert: bump its
			// measure now and let the loop's own visit to j do the single
			// insert once it gets there. Only a vertex that already had its
			// turn (j < i) is already sitting in the list and needs the
			// full remove/insert bump.
			if j < i {
				bumpAndReinsert(j)
			} else {
				lambda[j]++
			}
		})
	}

	// Step 4: main loop.
	for numLeft > 0 {
		maxnode := list.popMax()
		if maxnode < 0 {
			break // every remaining vertex has measure 0; leave them Fine below
		}
		markers[maxnode] = Coarse
		lambda[maxnode] = 0
		numLeft--

		forEachStrongSource(maxnode, func(j int) {
			if markers[j] != undecidedMark {
				return
			}
			markers[j] = Fine
			list.remove(j)
			numLeft--
			s.Row(j, func(k int) {
				if markers[k] == undecidedMark {
					bumpAndReinsert(k)
				}
			})
		})

		s.Row(maxnode, func(j int) {
			if markers[j] != undecidedMark {
				return
			}
			lambda[j]--
			list.remove(j)
			if lambda[j] > 0 {
				list.insert(j, lambda[j])
				return
			}
			markers[j] = Fine
			numLeft--
			s.Row(j, func(k int) {
				if markers[k] == undecidedMark {
					bumpAndReinsert(k)
				}
			})
		})
	}

	// Any vertex still undecided (measure never exceeded 0 and was never
	// visited) becomes Fine.
	for i := 0; i < row; i++ {
		if markers[i] == undecidedMark {
			markers[i] = Fine
		}
	}

	col := 0
	for _, m := range markers {
		if m == Coarse {
			col++
		}
	}

	col = secondPass(s, markers, col)
	return markers, col
}

// rowCounter is the minimal interface FormCoarseLevel needs from the
// fine-level matrix: how many entries row i stores, to detect isolated
// vertices (|row| <= 1).
type rowCounter interface {
	RowNNZ(i int) int
}

// secondPass is coarsening phase two (section 4.4): every F-vertex must
// have, for each of its strong F-neighbors, a common strong C-neighbor
// ("support"). When it doesn't, one candidate is promoted to C, using the
// exact two-step tie-break of the reference implementation (the ci_tilde /
// ci_tilde_mark pair): the first failure promotes the unsupported strong
// F-neighbor j to C and re-checks row i; a later failure while cINonempty
// is set promotes the failing row itself to C. That second step reverts
// j's promotion only if ciTilde is still set, but ciTilde is reset at the
// top of every row visit whenever ciTildeMark|i is nonzero, so j's
// promotion is kept except when the first failure happened at row 0.
func secondPass(s *Strength, markers []Marker, col int) int {
	row := s.Rows
	graphArray := make([]int, row)
	for i := range graphArray {
		graphArray[i] = -1
	}

	ciTilde := -1
	ciTildeMark := -1
	// cINonempty persists across the i-- retry the same way the
	// reference's C_i_nonempty does: it is scoped to the whole pass, not
	// to a single outer-loop iteration.
	cINonempty := false
	for i := 0; i < row; i++ {
		// The reference computes this as ci_tilde_mark |= i, an
		// or-assignment (not an equality test): ci_tilde is reset
		// whenever that bitwise-or is nonzero. Reproduced verbatim
		// per the second-pass tie-break note (section 4.4) since it
		// affects the resulting hierarchy.
		ciTildeMark |= i
		if ciTildeMark != 0 {
			ciTilde = -1
		}

		if markers[i] != Fine {
			continue
		}

		s.Row(i, func(j int) {
			if markers[j] == Coarse {
				graphArray[j] = i
			}
		})

		for ji := s.Ia[i]; ji < s.Ia[i+1]; ji++ {
			j := s.Ja[ji]
			if markers[j] != Fine {
				continue
			}

			setEmpty := true
			for jj := s.Ia[j]; jj < s.Ia[j+1]; jj++ {
				if graphArray[s.Ja[jj]] == i {
					setEmpty = false
					break
				}
			}
			if !setEmpty {
				continue
			}

			if cINonempty {
				markers[i] = Coarse
				col++
				if ciTilde > -1 {
					markers[ciTilde] = Fine
					col--
					ciTilde = -1
				}
				cINonempty = false
				break
			}
			ciTilde = j
			ciTildeMark = i
			markers[j] = Coarse
			col++
			cINonempty = true
			i--
			break
		}
	}
	return col
}
