package dataset

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(WriterTestSuite))

type WriterTestSuite struct{}

func (s *WriterTestSuite) TestConfigValidation(c *gc.C) {
	_, err := NewWriter(Config{Workers: -1})
	c.Assert(err, gc.ErrorMatches, "(?s).*output directory has not been specified.*invalid value for workers.*")
}

func (s *WriterTestSuite) TestWriteBatchAndIncrementalFiles(c *gc.C) {
	dir := c.MkDir()
	stale := filepath.Join(dir, BatchDir, "stale.txt")
	c.Assert(os.MkdirAll(filepath.Dir(stale), 0755), gc.IsNil)
	c.Assert(ioutil.WriteFile(stale, []byte("x"), 0644), gc.IsNil)

	w, err := NewWriter(Config{Dir: dir, Workers: 3})
	c.Assert(err, gc.IsNil)
	c.Assert(w.Write(context.TODO(), sampleIndex(c)), gc.IsNil)

	_, err = os.Stat(stale)
	c.Assert(os.IsNotExist(err), gc.Equals, true)

	for _, sub := range []string{BatchDir, IncrementalDir} {
		files, err := ioutil.ReadDir(filepath.Join(dir, sub))
		c.Assert(err, gc.IsNil)
		c.Assert(files, gc.HasLen, LastYear-FirstYear+1)
	}

	c.Assert(readFile(c, dir, IncrementalDir, "1992-edges.txt"), gc.Equals, "9201002 9201001\n")
	c.Assert(readFile(c, dir, IncrementalDir, "1993-edges.txt"), gc.Equals, "9301001 9201001\n9301001 9201002\n")
	c.Assert(readFile(c, dir, IncrementalDir, "1994-edges.txt"), gc.Equals, "")
	c.Assert(readFile(c, dir, IncrementalDir, "2000-edges.txt"), gc.Equals, "0010055 9912001\n")

	c.Assert(readFile(c, dir, BatchDir, "1992-edges.txt"), gc.Equals, "9201002 9201001\n")
	c.Assert(readFile(c, dir, BatchDir, "1993-edges.txt"), gc.Equals, "9201002 9201001\n9301001 9201001\n9301001 9201002\n")
	c.Assert(readFile(c, dir, BatchDir, "2002-edges.txt"), gc.Equals, "9201002 9201001\n9301001 9201001\n9301001 9201002\n0010055 9912001\n")
}

func (s *WriterTestSuite) TestCancelledContext(c *gc.C) {
	w, err := NewWriter(Config{Dir: c.MkDir()})
	c.Assert(err, gc.IsNil)

	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()
	err = w.Write(ctx, sampleIndex(c))
	c.Assert(err, gc.ErrorMatches, ".*context canceled")
}

func readFile(c *gc.C, parts ...string) string {
	data, err := ioutil.ReadFile(filepath.Join(parts...))
	c.Assert(err, gc.IsNil)
	return string(data)
}
