package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/gemcut/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// testCells keeps marching cubes fast in tests.
const testCells = 40

func TestBox(t *testing.T) {
	k := New(testCells)
	box := k.Box(100, 50, 25)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Vertices)%9 != 0 {
		t.Fatalf("vertex buffer length %d is not whole triangles", len(mesh.Vertices))
	}
}

func TestCylinderIsYUp(t *testing.T) {
	k := New(testCells)
	cyl := k.Cylinder(50, 10, 32)
	min, max := cyl.BoundingBox()

	const tol = 0.5
	if math.Abs((max[1]-min[1])-50) > tol {
		t.Errorf("Y extent = %f, want ~50", max[1]-min[1])
	}
	if math.Abs((max[0]-min[0])-20) > tol || math.Abs((max[2]-min[2])-20) > tol {
		t.Errorf("radial extent = %f x %f, want ~20", max[0]-min[0], max[2]-min[2])
	}

	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestDifference(t *testing.T) {
	k := New(testCells)

	box := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	diff, err := k.Difference(box, k.Cylinder(120, 20, 32))
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestDifferenceRemovesEverything(t *testing.T) {
	k := New(testCells)
	diff, err := k.Difference(k.Box(10, 10, 10), k.Box(100, 100, 100))
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	if _, err := k.ToMesh(diff); !errors.Is(err, kernel.ErrEmptyResult) {
		t.Errorf("ToMesh error = %v, want ErrEmptyResult", err)
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New(testCells)
	a := k.Box(50, 50, 50)
	b := k.Translate(k.Box(50, 50, 50), r3.Vec{X: 30})

	u, err := k.Union(a, b)
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	min, max := u.BoundingBox()
	if math.Abs(min[0]+25) > 0.5 || math.Abs(max[0]-55) > 0.5 {
		t.Errorf("union X range = [%f, %f], want [-25, 55]", min[0], max[0])
	}

	i, err := k.Intersection(a, b)
	if err != nil {
		t.Fatalf("Intersection failed: %v", err)
	}
	mesh, err := k.ToMesh(i)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
}

func TestTranslate(t *testing.T) {
	k := New(testCells)
	translated := k.Translate(k.Box(10, 10, 10), r3.Vec{X: 100, Y: 200, Z: 300})
	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New(testCells)
	box := k.Box(100, 10, 10)

	// A long box along X turned a quarter about Z extends along Y instead.
	rotated := k.Rotate(box, r3.NewRotation(math.Pi/2, r3.Vec{Z: 1}))
	min, max := rotated.BoundingBox()

	const tol = 1.0
	if math.Abs((max[0]-min[0])-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", max[0]-min[0])
	}
	if math.Abs((max[1]-min[1])-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", max[1]-min[1])
	}
}

func TestAxisAngle(t *testing.T) {
	axis, angle := axisAngle(r3.NewRotation(1.25, r3.Vec{X: 0, Y: 0, Z: 2}))
	if math.Abs(angle-1.25) > 1e-9 {
		t.Errorf("angle = %f, want 1.25", angle)
	}
	if math.Abs(axis.Z-1) > 1e-9 || math.Abs(axis.X) > 1e-9 || math.Abs(axis.Y) > 1e-9 {
		t.Errorf("axis = %v, want +Z", axis)
	}

	if _, angle := axisAngle(r3.NewRotation(0, r3.Vec{X: 1})); angle != 0 {
		t.Errorf("identity angle = %f, want 0", angle)
	}
}

func TestForeignSolid(t *testing.T) {
	k := New(testCells)
	if _, err := k.Union(k.Box(1, 1, 1), nil); !errors.Is(err, kernel.ErrEmptySolid) {
		t.Errorf("Union(nil) error = %v, want ErrEmptySolid", err)
	}
}
