package mesh

import (
	"fmt"
	"path"
	"strings"

	"github.com/ssargent/gridstore/pkg/store"
)

// GridAttributes holds named fields per domain, either directly below a zone
// or below one of its solution steps
type GridAttributes struct {
	zone *Zone
	root string
}

// GridAttributes returns the grid-level attribute set of the zone
func (z *Zone) GridAttributes() *GridAttributes {
	return &GridAttributes{zone: z, root: z.path}
}

func (a *GridAttributes) dir(d Domain) string {
	return path.Join(a.root, DomainGroupName(d))
}

// Count returns how many values a field of domain d holds
func (a *GridAttributes) Count(d Domain) (int, error) {
	return a.zone.topo.Count(d)
}

func (a *GridAttributes) checkLength(op string, d Domain, n int) error {
	want, err := a.Count(d)
	if err != nil {
		return err
	}
	if n != want {
		return newError(SizeMismatch, op, fmt.Sprintf("%s field needs %d values, got %d", d, want, n))
	}
	return nil
}

func checkFieldName(op, name string) error {
	if name == "" || strings.Contains(name, "/") {
		return newError(NotFound, op, fmt.Sprintf("invalid field name %q", name))
	}
	return nil
}

// WriteReal stores a real field; the length must equal the domain count
func (a *GridAttributes) WriteReal(d Domain, name string, values []float64) error {
	op := "write " + d.String() + " real " + name
	if err := checkFieldName(op, name); err != nil {
		return err
	}
	if err := a.checkLength(op, d, len(values)); err != nil {
		return err
	}
	return a.zone.File().writeFloat64s(op, a.dir(d), name, values)
}

// WriteInteger stores an integer field; the length must equal the domain count
func (a *GridAttributes) WriteInteger(d Domain, name string, values []int32) error {
	op := "write " + d.String() + " integer " + name
	if err := checkFieldName(op, name); err != nil {
		return err
	}
	if err := a.checkLength(op, d, len(values)); err != nil {
		return err
	}
	return a.zone.File().writeInt32s(op, a.dir(d), name, values)
}

// ReadReal reads a real field
func (a *GridAttributes) ReadReal(d Domain, name string) ([]float64, error) {
	op := "read " + d.String() + " real " + name
	if _, err := a.Count(d); err != nil {
		return nil, err
	}
	return a.zone.File().readFloat64s(op, a.dir(d), name)
}

// ReadInteger reads an integer field
func (a *GridAttributes) ReadInteger(d Domain, name string) ([]int32, error) {
	op := "read " + d.String() + " integer " + name
	if _, err := a.Count(d); err != nil {
		return nil, err
	}
	return a.zone.File().readInt32s(op, a.dir(d), name)
}

// Names lists the plain fields of a domain, sorted. Functional records are
// left out. A domain nothing was written to has no names.
func (a *GridAttributes) Names(d Domain) ([]string, error) {
	records, err := a.records("list "+d.String()+" fields", d)
	if err != nil {
		return nil, err
	}
	return plainFieldNames(records), nil
}

func (a *GridAttributes) records(op string, d Domain) ([]store.NodeInfo, error) {
	records, err := a.zone.File().childInfos(op, a.dir(d))
	if CodeOf(err) == NotFound {
		return nil, nil
	}
	return records, err
}

// Functional fields. A field F with auxiliary dimension D keeps the dimension
// values in F_D and the data for 1-based index i in F_D_i. Both kinds of
// record carry their role in the array header tag.

func (a *GridAttributes) checkDimensionWrite(op string, d Domain, field string) error {
	if err := checkFieldName(op, field); err != nil {
		return err
	}
	_, err := a.Count(d)
	return err
}

// WriteFunctionalDimensionReal stores the values of a field's dimension
func (a *GridAttributes) WriteFunctionalDimensionReal(d Domain, field, dimName string, values []float64) error {
	op := "write functional dimension " + FunctionalDimensionName(field, dimName)
	if err := a.checkDimensionWrite(op, d, field); err != nil {
		return err
	}
	return a.zone.File().writeTaggedFloat64s(op, a.dir(d), FunctionalDimensionName(field, dimName), roleFunctionalDimension, values)
}

// WriteFunctionalDimensionInteger stores integer dimension values
func (a *GridAttributes) WriteFunctionalDimensionInteger(d Domain, field, dimName string, values []int32) error {
	op := "write functional dimension " + FunctionalDimensionName(field, dimName)
	if err := a.checkDimensionWrite(op, d, field); err != nil {
		return err
	}
	return a.zone.File().writeTaggedInt32s(op, a.dir(d), FunctionalDimensionName(field, dimName), roleFunctionalDimension, values)
}

// checkFunctionalIndex requires the dimension record to exist and index to
// lie within it
func (a *GridAttributes) checkFunctionalIndex(op string, d Domain, field, dimName string, index int) error {
	info, err := a.dimension(op, d, field, dimName)
	if err != nil {
		return err
	}
	if n := info.Len; index < 1 || index > n {
		return newError(SizeMismatch, op, fmt.Sprintf("index %d not in 1..%d", index, n))
	}
	return nil
}

// WriteFunctionalReal stores the real data of a field at one dimension index
func (a *GridAttributes) WriteFunctionalReal(d Domain, field, dimName string, index int, values []float64) error {
	op := "write functional " + FunctionalValueName(field, dimName, index)
	if err := a.checkLength(op, d, len(values)); err != nil {
		return err
	}
	if err := a.checkFunctionalIndex(op, d, field, dimName, index); err != nil {
		return err
	}
	return a.zone.File().writeTaggedFloat64s(op, a.dir(d), FunctionalValueName(field, dimName, index), roleFunctionalValue, values)
}

// WriteFunctionalInteger stores the integer data of a field at one index
func (a *GridAttributes) WriteFunctionalInteger(d Domain, field, dimName string, index int, values []int32) error {
	op := "write functional " + FunctionalValueName(field, dimName, index)
	if err := a.checkLength(op, d, len(values)); err != nil {
		return err
	}
	if err := a.checkFunctionalIndex(op, d, field, dimName, index); err != nil {
		return err
	}
	return a.zone.File().writeTaggedInt32s(op, a.dir(d), FunctionalValueName(field, dimName, index), roleFunctionalValue, values)
}

// dimension stats the dimension record of field. A plain field that happens
// to carry the same name does not count.
func (a *GridAttributes) dimension(op string, d Domain, field, dimName string) (store.NodeInfo, error) {
	name := FunctionalDimensionName(field, dimName)
	info, err := a.zone.File().stat(op, a.dir(d), name)
	if err != nil {
		return store.NodeInfo{}, err
	}
	if info.IsGroup || info.Tag != roleFunctionalDimension {
		return store.NodeInfo{}, newError(NotFound, op, fmt.Sprintf("%s is not a functional dimension", name))
	}
	return info, nil
}

// ReadFunctionalDimensionSize returns how many values the dimension holds
func (a *GridAttributes) ReadFunctionalDimensionSize(d Domain, field, dimName string) (int, error) {
	op := "read functional dimension size " + FunctionalDimensionName(field, dimName)
	info, err := a.dimension(op, d, field, dimName)
	if err != nil {
		return 0, err
	}
	return info.Len, nil
}

// ReadFunctionalDimensionReal returns the real dimension values
func (a *GridAttributes) ReadFunctionalDimensionReal(d Domain, field, dimName string) ([]float64, error) {
	op := "read functional dimension " + FunctionalDimensionName(field, dimName)
	if _, err := a.dimension(op, d, field, dimName); err != nil {
		return nil, err
	}
	return a.zone.File().readFloat64s(op, a.dir(d), FunctionalDimensionName(field, dimName))
}

// ReadFunctionalDimensionInteger returns the integer dimension values
func (a *GridAttributes) ReadFunctionalDimensionInteger(d Domain, field, dimName string) ([]int32, error) {
	op := "read functional dimension " + FunctionalDimensionName(field, dimName)
	if _, err := a.dimension(op, d, field, dimName); err != nil {
		return nil, err
	}
	return a.zone.File().readInt32s(op, a.dir(d), FunctionalDimensionName(field, dimName))
}

// functionalRecord finds the data record of field at index without knowing
// the dimension name
func (a *GridAttributes) functionalRecord(op string, d Domain, field string, index int) (string, error) {
	records, err := a.records(op, d)
	if err != nil {
		return "", err
	}
	dims := functionalDimensions(records, field, index)
	switch len(dims) {
	case 0:
		return "", newError(NotFound, op, fmt.Sprintf("no functional data for %s at index %d", field, index))
	case 1:
		return dims[0] + "_" + fmt.Sprint(index), nil
	default:
		return "", newError(InvalidDimension, op, fmt.Sprintf("%s has %d dimensions: %s", field, len(dims), strings.Join(dims, ", ")))
	}
}

// ReadFunctionalReal returns the real data of field at a 1-based index
func (a *GridAttributes) ReadFunctionalReal(d Domain, field string, index int) ([]float64, error) {
	op := fmt.Sprintf("read functional %s %d", field, index)
	name, err := a.functionalRecord(op, d, field, index)
	if err != nil {
		return nil, err
	}
	return a.zone.File().readFloat64s(op, a.dir(d), name)
}

// ReadFunctionalInteger returns the integer data of field at a 1-based index
func (a *GridAttributes) ReadFunctionalInteger(d Domain, field string, index int) ([]int32, error) {
	op := fmt.Sprintf("read functional %s %d", field, index)
	name, err := a.functionalRecord(op, d, field, index)
	if err != nil {
		return nil, err
	}
	return a.zone.File().readInt32s(op, a.dir(d), name)
}

// ReadFunctionalTimeSize is ReadFunctionalDimensionSize for the Time dimension
func (a *GridAttributes) ReadFunctionalTimeSize(d Domain, field string) (int, error) {
	return a.ReadFunctionalDimensionSize(d, field, TimeDimension)
}

// ReadFunctionalTime returns the time values of a time-indexed field
func (a *GridAttributes) ReadFunctionalTime(d Domain, field string) ([]float64, error) {
	return a.ReadFunctionalDimensionReal(d, field, TimeDimension)
}
