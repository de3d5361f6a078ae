package planner

import (
	"github.com/arthur-debert/mirage/pkg/scanner"
)

// class is one set of files with identical content, in scan order.
type class struct {
	size    int64
	members []string
}

// index maps every candidate that has at least one equal partner to its
// equivalence class.
type index struct {
	classes []*class
	byPath  map[string]*class
}

func (ix *index) classOf(path string) *class {
	return ix.byPath[path]
}

// buildIndex groups files into equivalence classes. Files with a unique
// size or digest are never opened twice. Equal digests are confirmed
// byte by byte, so a hash collision can never merge two classes.
func (p *Planner) buildIndex(files []scanner.File) (*index, error) {
	ix := &index{byPath: map[string]*class{}}

	bySize := map[int64][]scanner.File{}
	var sizes []int64
	for _, f := range files {
		if _, seen := bySize[f.Size]; !seen {
			sizes = append(sizes, f.Size)
		}
		bySize[f.Size] = append(bySize[f.Size], f)
	}

	for _, size := range sizes {
		group := bySize[size]
		if len(group) < 2 {
			continue
		}

		byDigest := map[string][]string{}
		var digests []string
		for _, f := range group {
			digest, err := p.comparator.Digest(f.Path)
			if err != nil {
				return nil, err
			}
			if _, seen := byDigest[digest]; !seen {
				digests = append(digests, digest)
			}
			byDigest[digest] = append(byDigest[digest], f.Path)
		}

		for _, digest := range digests {
			members := byDigest[digest]
			if len(members) < 2 {
				continue
			}
			split, err := p.split(size, members)
			if err != nil {
				return nil, err
			}
			for _, c := range split {
				if len(c.members) < 2 {
					continue
				}
				ix.classes = append(ix.classes, c)
				for _, m := range c.members {
					ix.byPath[m] = c
				}
			}
		}
	}

	return ix, nil
}

// split partitions files sharing a digest by exact content.
func (p *Planner) split(size int64, paths []string) ([]*class, error) {
	var classes []*class
	for _, path := range paths {
		var home *class
		for _, c := range classes {
			same, err := p.comparator.FullMatch(c.members[0], path)
			if err != nil {
				return nil, err
			}
			if same {
				home = c
				break
			}
		}
		if home == nil {
			home = &class{size: size}
			classes = append(classes, home)
		}
		home.members = append(home.members, path)
	}
	return classes, nil
}
